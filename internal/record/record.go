package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MessageKey is the reserved field carrying the raw log line. It is always
// emitted last and overrides any static field of the same name.
const MessageKey = "message"

// Field is one static key/value pair of a template.
type Field struct {
	Key   string
	Value string
}

// Template is the ordered static field set stamped onto every record.
// Duplicate keys follow last-value-wins semantics while keeping the position
// of the first occurrence. Templates are not safe for concurrent mutation;
// build one at startup, then only encode with it.
type Template struct {
	fields []Field
	prefix []byte
}

// NewTemplate returns an empty template.
func NewTemplate() *Template {
	return &Template{}
}

// ParseFields builds a template from `key:value` positional arguments.
// Arguments split on the first colon; anything without one is rejected.
func ParseFields(args []string) (*Template, error) {
	tmpl := NewTemplate()
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("argument %q is not a 'key:value' pair", arg)
		}
		tmpl.Set(parts[0], parts[1])
	}
	return tmpl, nil
}

// Set adds or replaces a static field. Replacing keeps the original position.
func (t *Template) Set(key, value string) {
	for i := range t.fields {
		if t.fields[i].Key == key {
			t.fields[i].Value = value
			t.prefix = nil
			return
		}
	}
	t.fields = append(t.fields, Field{Key: key, Value: value})
	t.prefix = nil
}

// Fields returns the static fields in insertion order.
func (t *Template) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// AppendRecord appends one serialized record to dst: the static fields in
// order, then `message` set to line, then a terminating newline. It returns
// the extended slice so callers can reuse one buffer across lines and hand
// the sink a complete record in a single write.
func (t *Template) AppendRecord(dst []byte, line string) []byte {
	if t.prefix == nil {
		t.compile()
	}
	dst = append(dst, t.prefix...)
	dst = append(dst, `"message":`...)
	dst = appendJSONString(dst, line)
	dst = append(dst, '}', '\n')
	return dst
}

func (t *Template) compile() {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range t.fields {
		if f.Key == MessageKey {
			continue
		}
		buf.Write(appendJSONString(nil, f.Key))
		buf.WriteByte(':')
		buf.Write(appendJSONString(nil, f.Value))
		buf.WriteByte(',')
	}
	t.prefix = buf.Bytes()
}

func appendJSONString(dst []byte, s string) []byte {
	// json.Marshal cannot fail for a string value.
	encoded, _ := json.Marshal(s)
	return append(dst, encoded...)
}

package record

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFields(t *testing.T) {
	tmpl, err := ParseFields([]string{"host:web1", "dc:eu-west", "path:/var/log:old"})
	if err != nil {
		t.Fatal(err)
	}

	fields := tmpl.Fields()
	want := []Field{
		{Key: "host", Value: "web1"},
		{Key: "dc", Value: "eu-west"},
		{Key: "path", Value: "/var/log:old"},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i, f := range fields {
		if f != want[i] {
			t.Errorf("field %d: got %+v, want %+v", i, f, want[i])
		}
	}
}

func TestParseFieldsRejectsBareArgument(t *testing.T) {
	if _, err := ParseFields([]string{"badarg"}); err == nil {
		t.Fatal("expected error for argument without colon")
	}
}

func TestParseFieldsLastValueWins(t *testing.T) {
	tmpl, err := ParseFields([]string{"host:web1", "host:web2"})
	if err != nil {
		t.Fatal(err)
	}
	fields := tmpl.Fields()
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1", len(fields))
	}
	if fields[0].Value != "web2" {
		t.Fatalf("got value %q, want web2", fields[0].Value)
	}
}

func TestAppendRecordOrderAndContent(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.Set("host", "web1")
	tmpl.Set("app", "nginx")

	rec := tmpl.AppendRecord(nil, "a\n")
	want := `{"host":"web1","app":"nginx","message":"a\n"}` + "\n"
	if string(rec) != want {
		t.Fatalf("got %q, want %q", rec, want)
	}

	// The record must round-trip as valid JSON.
	var decoded map[string]string
	if err := json.Unmarshal(rec, &decoded); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if decoded["message"] != "a\n" {
		t.Fatalf("message round-trip: got %q", decoded["message"])
	}
}

func TestAppendRecordMessageFieldReserved(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.Set("message", "static")
	tmpl.Set("host", "web1")

	rec := string(tmpl.AppendRecord(nil, "line\n"))
	if strings.Count(rec, `"message"`) != 1 {
		t.Fatalf("expected exactly one message key, got %q", rec)
	}
	if !strings.Contains(rec, `"message":"line\n"`) {
		t.Fatalf("static message was not overridden: %q", rec)
	}
}

func TestAppendRecordEscapesSpecials(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.Set("path", `C:\logs`)

	rec := tmpl.AppendRecord(nil, "tab\there \"quoted\"\n")
	var decoded map[string]string
	if err := json.Unmarshal(rec, &decoded); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if decoded["path"] != `C:\logs` {
		t.Fatalf("path round-trip: got %q", decoded["path"])
	}
	if decoded["message"] != "tab\there \"quoted\"\n" {
		t.Fatalf("message round-trip: got %q", decoded["message"])
	}
}

func TestAppendRecordReusesBuffer(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.Set("host", "web1")

	buf := tmpl.AppendRecord(nil, "first\n")
	buf = tmpl.AppendRecord(buf[:0], "second\n")
	want := `{"host":"web1","message":"second\n"}` + "\n"
	if string(buf) != want {
		t.Fatalf("got %q, want %q", buf, want)
	}
}

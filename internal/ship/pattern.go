package ship

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled shell-glob name filter supporting `*`, `?`, and
// `[seq]` (with `[!seq]` negation). Unlike filepath.Match, `*` also crosses
// path separators, so `*.log` matches the archive member `logs/app.log`.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// MatchAll matches every name. It is the default when no explicit pattern
// applies to the selected input mode.
var MatchAll = mustCompilePattern("*")

// CompilePattern translates a glob pattern into its compiled form.
func CompilePattern(pattern string) (*Pattern, error) {
	re, err := regexp.Compile(translateGlob(pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return &Pattern{raw: pattern, re: re}, nil
}

func mustCompilePattern(pattern string) *Pattern {
	p, err := CompilePattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether name matches the whole pattern.
func (p *Pattern) Match(name string) bool {
	return p.re.MatchString(name)
}

func (p *Pattern) String() string {
	return p.raw
}

// translateGlob converts a glob pattern into an anchored regular expression.
func translateGlob(pattern string) string {
	var sb strings.Builder
	sb.WriteString(`\A(?s:`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
				j++
			}
			if j < len(runes) && runes[j] == ']' {
				j++
			}
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j >= len(runes) {
				// Unterminated class matches a literal bracket.
				sb.WriteString(`\[`)
				continue
			}
			seq := string(runes[i+1 : j])
			seq = strings.ReplaceAll(seq, `\`, `\\`)
			sb.WriteByte('[')
			if strings.HasPrefix(seq, "!") {
				sb.WriteByte('^')
				sb.WriteString(seq[1:])
			} else {
				if strings.HasPrefix(seq, "^") {
					sb.WriteByte('\\')
				}
				sb.WriteString(seq)
			}
			sb.WriteByte(']')
			i = j
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString(`)\z`)
	return sb.String()
}

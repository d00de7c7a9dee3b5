package ship

import "testing"

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"*.log", "app.log", true},
		{"*.log", "logs/app.log", true},
		{"*.log", "app.log.1", false},
		{"app.?", "app.1", true},
		{"app.?", "app.12", false},
		{"app.[0-9]", "app.7", true},
		{"app.[0-9]", "app.x", false},
		{"app.[!0-9]", "app.x", true},
		{"app.[!0-9]", "app.7", false},
		{"syslog*", "syslog.2.gz", true},
		{"syslog*", "messages", false},
		{"a[b", "a[b", true},
		{"*.tar.gz", "backup.tar.gz", true},
		{"*.gz", "plain.txt", false},
	}

	for _, tt := range tests {
		p, err := CompilePattern(tt.pattern)
		if err != nil {
			t.Fatalf("compile %q: %v", tt.pattern, err)
		}
		if got := p.Match(tt.name); got != tt.want {
			t.Errorf("pattern %q match %q: got %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestMatchAll(t *testing.T) {
	for _, name := range []string{"", "x", "a/b/c", "weird\nname"} {
		if !MatchAll.Match(name) {
			t.Errorf("MatchAll rejected %q", name)
		}
	}
}

package bot

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"underscore", "user_name", "user\\_name"},
		{"dots and dashes", "v1.2-rc", "v1\\.2\\-rc"},
		{"brackets", "[link](url)", "\\[link\\]\\(url\\)"},
		{"backslash", `a\b`, `a\\b`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	t.Run("short message stays whole", func(t *testing.T) {
		parts := splitMessage("hello", 100)
		if len(parts) != 1 || parts[0] != "hello" {
			t.Fatalf("got %v, want single part", parts)
		}
	})

	t.Run("splits at newline", func(t *testing.T) {
		text := strings.Repeat("line\n", 10)
		parts := splitMessage(text, 12)
		if len(parts) < 2 {
			t.Fatalf("expected multiple parts, got %d", len(parts))
		}
		for i, p := range parts {
			if len(p) > 12 {
				t.Errorf("part %d exceeds limit: %d bytes", i, len(p))
			}
		}
		if strings.Join(parts, "") != text {
			t.Error("parts do not reassemble into the original text")
		}
	})

	t.Run("hard split without newlines", func(t *testing.T) {
		text := strings.Repeat("a", 25)
		parts := splitMessage(text, 10)
		if len(parts) != 3 {
			t.Fatalf("got %d parts, want 3", len(parts))
		}
		if strings.Join(parts, "") != text {
			t.Error("parts do not reassemble into the original text")
		}
	})
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	got := sortedKeys(m)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

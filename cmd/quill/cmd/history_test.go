package cmd

import "testing"

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short text unchanged", "a quiet day", 48, "a quiet day"},
		{"newlines collapsed", "first line\nsecond line", 48, "first line second line"},
		{"long text truncated", "one two three four five", 10, "one two th…"},
		{"cjk counted by rune", "今天天气很好今天天气很好", 6, "今天天气很好…"},
		{"empty", "   ", 48, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewText(tt.in, tt.max); got != tt.want {
				t.Errorf("previewText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

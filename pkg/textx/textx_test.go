package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"control chars stripped", "he\x00llo\nwo\x7frld\t!", "hello\nworld\t!"},
		{"whitespace trimmed", "  answer  ", "answer"},
		{"crlf kept", "line1\r\nline2", "line1\r\nline2"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeText(tc.in); got != tc.want {
				t.Fatalf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

package roman

import "testing"

func TestHasHangul(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"사랑", true},
		{"mixed 사랑 text", true},
		{"plain english", false},
		{"", false},
		{"日本語", false},
	}
	for _, tt := range tests {
		if got := HasHangul(tt.in); got != tt.want {
			t.Errorf("HasHangul(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRomanize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"사랑", "sarang"},
		{"안녕", "annyeong"},
		{"강", "gang"},
		{"한", "han"},
		{"김", "gim"},
		{"너", "neo"},
		{"의", "ui"},
		// non-Hangul runes pass through
		{"사랑 forever", "sarang forever"},
	}
	for _, tt := range tests {
		if got := Romanize(tt.in); got != tt.want {
			t.Errorf("Romanize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRomanize_NoHangul(t *testing.T) {
	for _, in := range []string{"", "  ", "english", "123"} {
		if got := Romanize(in); got != "" {
			t.Errorf("Romanize(%q) = %q, want empty for non-Korean input", in, got)
		}
	}
}

func TestTransliterate(t *testing.T) {
	if got := Transliterate("already ascii"); got != "" {
		t.Errorf("Transliterate() on plain ASCII = %q, want empty (nothing to do)", got)
	}
	if got := Transliterate("Привет"); len(got) == 0 {
		t.Error("Transliterate() on Cyrillic returned nothing")
	}
}

package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"punctuation only", "!!! ,,, ...", ""},
		{"mixed case and punctuation", "Hello, World!", "helloworld"},
		{"invoice number", "Invoice #123", "invoice123"},
		{"underscore kept", "snake_case", "snake_case"},
		{"cjk kept", "合计：50元", "合计50元"},
		{"cjk with spaces", "发 票 号", "发票号"},
		{"full-width latin folded", "ＡＢＣ１２３", "abc123"},
		{"accented letters dropped", "café", "caf"},
		{"tabs and newlines", "Total\t:\n 50", "total50"},
		{"hangul dropped", "합계 50", "50"},
		{"vulgar fraction dropped", "½", ""},
		{"superscript dropped", "m²", "m"},
		{"circled digit dropped", "①", ""},
		{"roman numeral dropped", "Ⅻ", ""},
		{"ligature dropped", "ﬁle", "le"},
		{"full-width punctuation dropped", "（１）", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello, World!",
		"Invoice #123",
		"合计：５０元",
		"ＡＢＣ-def_GHI",
		"⼈⼝",
		"émoji 🎉 mix 混合",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once %q, twice %q", in, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hello, World!", "hello world", true},
		{"Invoice #123", "invoice123", true},
		{"Total: 50", "Total: 51", false},
		{"", "...", true},
		{"½", "12", false},
		{"m²", "m2", false},
		{"①", "1", false},
		{"ＴＯＴＡＬ５０", "total 50", true},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q): got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

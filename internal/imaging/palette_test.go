package imaging

import (
	"image/color"
	"testing"
)

func TestSideColor(t *testing.T) {
	tests := []struct {
		side    string
		want    color.RGBA
		wantErr bool
	}{
		{"first", FirstColor, false},
		{"Second", SecondColor, false},
		{"image1", FirstColor, false},
		{"2", SecondColor, false},
		{"third", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := SideColor(tt.side)
		if (err != nil) != tt.wantErr {
			t.Errorf("SideColor(%q) error: got %v, wantErr %v", tt.side, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("SideColor(%q): got %v, want %v", tt.side, got, tt.want)
		}
	}

	if FirstColor == SecondColor {
		t.Error("kinds must use distinct colours")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"first", SideFirst, false},
		{"IMAGE1", SideFirst, false},
		{" 1 ", SideFirst, false},
		{"Second", SideSecond, false},
		{"image2", SideSecond, false},
		{"2", SideSecond, false},
		{"", 0, true},
		{"both", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSide(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSide(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}

	if SideFirst.String() != "first" || SideSecond.String() != "second" {
		t.Errorf("String: got %q and %q", SideFirst, SideSecond)
	}
	if SideSecond.Color() != SecondColor || SideFirst.Color() != FirstColor {
		t.Error("Color does not match the side palette")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#00f", color.RGBA{0, 0, 255, 255}, false},
		{"", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{255, 0, 0, 255}); got != "#ff0000" {
		t.Errorf("Hex: got %s, want #ff0000", got)
	}
}

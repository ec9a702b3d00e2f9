package pngutil

import (
	"errors"
	"strings"
	"testing"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantKeyword string
		wantValue   string
		wantOK      bool
	}{
		{"keyword and value", "ccv3\x00e30=", "ccv3", "e30=", true},
		{"empty value", "Comment\x00", "Comment", "", true},
		{"splits at first nul", "a\x00b\x00c", "a", "b\x00c", true},
		{"no separator", "ccv3e30=", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, value, ok := SplitText([]byte(tt.data))
			if ok != tt.wantOK || keyword != tt.wantKeyword || string(value) != tt.wantValue {
				t.Errorf("SplitText(%q) = %q, %q, %v, want %q, %q, %v",
					tt.data, keyword, value, ok, tt.wantKeyword, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestEncodeText_RoundTrip(t *testing.T) {
	data := EncodeText("chara", []byte("eyJ9"))

	if string(data) != "chara\x00eyJ9" {
		t.Fatalf("EncodeText() = %q", data)
	}
	keyword, value, ok := SplitText(data)
	if !ok || keyword != "chara" || string(value) != "eyJ9" {
		t.Errorf("SplitText(EncodeText()) = %q, %q, %v", keyword, value, ok)
	}
}

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		keyword string
		valid   bool
	}{
		{"ccv3", true},
		{"chara", true},
		{"Creation Time", true},
		{strings.Repeat("k", 79), true},
		{"caf\xe9", true},
		{"", false},
		{strings.Repeat("k", 80), false},
		{" lead", false},
		{"trail ", false},
		{"two  spaces", false},
		{"nul\x00", false},
		{"tab\t", false},
		{"c1\x85", false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			err := ValidateKeyword(tt.keyword)
			if tt.valid && err != nil {
				t.Errorf("ValidateKeyword(%q) error = %v, want nil", tt.keyword, err)
			}
			if !tt.valid && !errors.Is(err, cerrors.ErrInvalidKeyword) {
				t.Errorf("ValidateKeyword(%q) error = %v, want ErrInvalidKeyword", tt.keyword, err)
			}
		})
	}
}

package cardpng

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
)

func TestExtract_Absent(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{"no tEXt chunk", minimalPNG()},
		{"other keyword", buildPNG(ihdrChunk(), textChunk("Comment", "hello"), idatChunk(), iendChunk())},
		{"legacy keyword only", buildPNG(ihdrChunk(), textChunk(KeywordV2, `{"name":"Old"}`), idatChunk(), iendChunk())},
		{"card after IEND", append(minimalPNG(), textChunk(KeywordV3, `{"name":"Late"}`)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, found, err := Extract(tt.stream)
			if err != nil {
				t.Fatalf("Extract() error = %v, want nil", err)
			}
			if found || payload != "" {
				t.Errorf("Extract() = %q, %v, want absent", payload, found)
			}
		})
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	stream := buildPNG(
		ihdrChunk(),
		textChunk(KeywordV3, "first"),
		idatChunk(),
		textChunk(KeywordV3, "second"),
		iendChunk(),
	)

	payload, found, err := Extract(stream)
	if err != nil || !found {
		t.Fatalf("Extract() = %v, %v", found, err)
	}
	if payload != "first" {
		t.Errorf("Extract() = %q, want %q", payload, "first")
	}
}

func TestExtract_SkipsMalformedText(t *testing.T) {
	stream := buildPNG(
		ihdrChunk(),
		rawTextChunk("no separator here"),
		textChunk(KeywordV3, `{"name":"Ada"}`),
		iendChunk(),
	)

	payload, found, err := Extract(stream)
	if err != nil || !found {
		t.Fatalf("Extract() = %v, %v", found, err)
	}
	if payload != `{"name":"Ada"}` {
		t.Errorf("Extract() = %q", payload)
	}
}

func TestExtract_IgnoresBadCRC(t *testing.T) {
	card := textChunk(KeywordV3, "tolerated")
	card[len(card)-1] ^= 0xff

	payload, found, err := Extract(buildPNG(ihdrChunk(), card, iendChunk()))
	if err != nil || !found {
		t.Fatalf("Extract() = %v, %v", found, err)
	}
	if payload != "tolerated" {
		t.Errorf("Extract() = %q", payload)
	}
}

func TestExtract_UnpaddedBase64(t *testing.T) {
	value := base64.RawStdEncoding.EncodeToString([]byte(`{"a":1}`))
	stream := buildPNG(ihdrChunk(), rawTextChunk(KeywordV3+"\x00"+value), iendChunk())

	payload, found, err := Extract(stream)
	if err != nil || !found {
		t.Fatalf("Extract() = %v, %v", found, err)
	}
	if payload != `{"a":1}` {
		t.Errorf("Extract() = %q", payload)
	}
}

func TestExtract_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not base64", KeywordV3 + "\x00!!not base64!!"},
		{"not utf-8", KeywordV3 + "\x00" + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := buildPNG(ihdrChunk(), rawTextChunk(tt.data), iendChunk())
			_, found, err := Extract(stream)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("Extract() error = %v, want ErrDecode", err)
			}
			if found {
				t.Error("Extract() found = true on decode failure")
			}
		})
	}
}

func TestExtract_InvalidSignature(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

	_, _, err := Extract(jpeg)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Extract() error = %v, want ErrInvalidSignature", err)
	}
}

func TestExtract_Truncated(t *testing.T) {
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], 1000)
	copy(header[4:8], "tEXt")
	stream := buildPNG(ihdrChunk(), header, []byte("0123456789"))

	_, _, err := Extract(stream)
	if !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("Extract() error = %v, want ErrTruncatedStream", err)
	}
}

func TestExtract_DoesNotMutateInput(t *testing.T) {
	stream := buildPNG(ihdrChunk(), textChunk(KeywordV3, "x"), iendChunk())
	before := append([]byte(nil), stream...)

	if _, _, err := Extract(stream); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(stream, before) {
		t.Error("Extract() modified its input")
	}
}

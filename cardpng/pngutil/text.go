package pngutil

import (
	"bytes"
	"strings"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
)

// MaxKeywordLength is the longest keyword a tEXt chunk may carry.
const MaxKeywordLength = 79

// SplitText splits tEXt chunk data at the first NUL into keyword and value.
// ok is false when there is no separator.
func SplitText(data []byte) (keyword string, value []byte, ok bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return "", nil, false
	}
	return string(data[:i]), data[i+1:], true
}

// EncodeText builds tEXt chunk data: keyword, one NUL, then value.
func EncodeText(keyword string, value []byte) []byte {
	data := make([]byte, 0, len(keyword)+1+len(value))
	data = append(data, keyword...)
	data = append(data, 0)
	return append(data, value...)
}

// ValidateKeyword checks keyword against the PNG tEXt keyword rules: 1 to 79
// printable Latin-1 bytes with no leading, trailing or consecutive spaces.
func ValidateKeyword(keyword string) error {
	switch {
	case keyword == "":
		return cerrors.NewInvalidKeywordError(keyword, "empty")
	case len(keyword) > MaxKeywordLength:
		return cerrors.NewInvalidKeywordError(keyword, "longer than 79 bytes")
	case keyword[0] == ' ' || keyword[len(keyword)-1] == ' ':
		return cerrors.NewInvalidKeywordError(keyword, "leading or trailing space")
	case strings.Contains(keyword, "  "):
		return cerrors.NewInvalidKeywordError(keyword, "consecutive spaces")
	}
	for i := 0; i < len(keyword); i++ {
		c := keyword[i]
		if c < 32 || (c > 126 && c < 161) {
			return cerrors.NewInvalidKeywordError(keyword, "non-printable byte")
		}
	}
	return nil
}

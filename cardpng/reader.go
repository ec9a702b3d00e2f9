package cardpng

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/flaneur2020/card-png/cardpng/pngutil"
)

const (
	// KeywordV3 marks a tEXt chunk carrying a Character Card V3 document.
	KeywordV3 = "ccv3"

	// KeywordV2 marks the legacy tEXt chunk used by V1/V2 cards.
	KeywordV2 = "chara"
)

// Extract returns the payload of the first tEXt chunk keyed "ccv3". found is
// false, with a nil error, when the stream carries no such chunk.
func Extract(stream []byte) (payload string, found bool, err error) {
	return ExtractKeyword(stream, KeywordV3)
}

// ExtractKeyword returns the Base64-decoded UTF-8 value of the first tEXt
// chunk whose keyword equals keyword. The walk stops at the first match.
// tEXt chunks without a NUL separator are skipped, and chunk CRCs are not
// checked.
func ExtractKeyword(stream []byte, keyword string) (string, bool, error) {
	w, err := pngutil.NewWalker(stream)
	if err != nil {
		return "", false, err
	}

	for w.Next() {
		c := w.Chunk()
		if c.Type != pngutil.TypeTEXT {
			continue
		}
		key, value, ok := pngutil.SplitText(c.Data)
		if !ok {
			logger.Debug("skipping tEXt chunk without separator at offset %d", c.Offset)
			continue
		}
		if key != keyword {
			continue
		}
		payload, err := decodeValue(value)
		if err != nil {
			return "", false, cerrors.NewDecodeError(keyword, err)
		}
		return payload, true, nil
	}
	if err := w.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

var errInvalidUTF8 = errors.New("payload is not valid UTF-8")

// decodeValue undoes the Base64 encoding applied by Embed. Unpadded Base64
// is accepted as well since some card editors strip the padding.
func decodeValue(value []byte) (string, error) {
	// Raw length is never smaller than the padded one.
	decoded := make([]byte, base64.RawStdEncoding.DecodedLen(len(value)))
	n, err := base64.StdEncoding.Decode(decoded, value)
	if err != nil && len(value)%4 != 0 {
		n, err = base64.RawStdEncoding.Decode(decoded, value)
	}
	if err != nil {
		return "", err
	}
	decoded = decoded[:n]
	if !utf8.Valid(decoded) {
		return "", errInvalidUTF8
	}
	return string(decoded), nil
}

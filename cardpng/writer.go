package cardpng

import (
	"encoding/base64"
	"unicode/utf8"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/flaneur2020/card-png/cardpng/pngutil"
)

// Embed returns a copy of stream with payload stored in a new "ccv3" tEXt
// chunk placed immediately before the first IEND. Existing "ccv3" chunks are
// left in place, and since Extract returns the first match they keep
// shadowing the new one; use Replace to overwrite a card.
func Embed(stream []byte, payload string) ([]byte, error) {
	return EmbedKeyword(stream, KeywordV3, payload)
}

// EmbedKeyword is Embed with a caller-chosen tEXt keyword.
func EmbedKeyword(stream []byte, keyword string, payload string) ([]byte, error) {
	w, err := pngutil.NewWalker(stream)
	if err != nil {
		return nil, err
	}
	if err := pngutil.ValidateKeyword(keyword); err != nil {
		return nil, err
	}
	chunk, err := encodeTextChunk(keyword, payload)
	if err != nil {
		return nil, err
	}

	iend := -1
	for w.Next() {
		if c := w.Chunk(); c.Type == pngutil.TypeIEND {
			iend = c.Offset
		}
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	if iend < 0 {
		return nil, cerrors.NewMissingTerminatorError(len(stream))
	}

	out := make([]byte, 0, len(stream)+len(chunk))
	out = append(out, stream[:iend]...)
	out = append(out, chunk...)
	out = append(out, stream[iend:]...)

	logger.Debug("embedded %d byte %q chunk at offset %d", len(chunk), keyword, iend)
	return out, nil
}

// Replace removes every "ccv3" tEXt chunk from stream and then embeds
// payload, so the result carries exactly one card.
func Replace(stream []byte, payload string) ([]byte, error) {
	return ReplaceKeyword(stream, KeywordV3, payload)
}

// ReplaceKeyword is Replace with a caller-chosen tEXt keyword.
func ReplaceKeyword(stream []byte, keyword string, payload string) ([]byte, error) {
	stripped, _, err := Strip(stream, keyword)
	if err != nil {
		return nil, err
	}
	return EmbedKeyword(stripped, keyword, payload)
}

// Strip returns a copy of stream without the tEXt chunks keyed by keyword,
// along with the number of chunks removed. All other chunks, and any bytes
// after IEND, are copied unchanged and in order.
func Strip(stream []byte, keyword string) ([]byte, int, error) {
	w, err := pngutil.NewWalker(stream)
	if err != nil {
		return nil, 0, err
	}

	out := make([]byte, 0, len(stream))
	out = append(out, pngutil.Signature...)
	removed := 0
	for w.Next() {
		c := w.Chunk()
		if c.Type == pngutil.TypeTEXT {
			if key, _, ok := pngutil.SplitText(c.Data); ok && key == keyword {
				removed++
				continue
			}
		}
		out = append(out, c.Bytes()...)
	}
	if err := w.Err(); err != nil {
		return nil, 0, err
	}
	out = append(out, stream[w.Offset():]...)

	if removed > 0 {
		logger.Debug("stripped %d %q chunk(s)", removed, keyword)
	}
	return out, removed, nil
}

func encodeTextChunk(keyword string, payload string) ([]byte, error) {
	if !utf8.ValidString(payload) {
		return nil, cerrors.NewDecodeError(keyword, errInvalidUTF8)
	}
	value := make([]byte, base64.StdEncoding.EncodedLen(len(payload)))
	base64.StdEncoding.Encode(value, []byte(payload))
	return pngutil.EncodeChunk(pngutil.TypeTEXT, pngutil.EncodeText(keyword, value)), nil
}

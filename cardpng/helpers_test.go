package cardpng

import (
	"bytes"
	"encoding/base64"

	"github.com/flaneur2020/card-png/cardpng/pngutil"
)

var (
	typeIHDR = pngutil.ChunkType{'I', 'H', 'D', 'R'}
	typeIDAT = pngutil.ChunkType{'I', 'D', 'A', 'T'}
)

// buildPNG concatenates the signature and the given encoded chunks.
func buildPNG(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(pngutil.Signature)
	for _, c := range chunks {
		buf.Write(c)
	}
	return buf.Bytes()
}

func ihdrChunk() []byte {
	return pngutil.EncodeChunk(typeIHDR, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0})
}

func idatChunk() []byte {
	return pngutil.EncodeChunk(typeIDAT, []byte{0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0x00, 0x00, 0x03, 0x01, 0x01, 0x00})
}

func iendChunk() []byte {
	return pngutil.EncodeChunk(pngutil.TypeIEND, nil)
}

// minimalPNG is signature + IHDR + IDAT + IEND with no tEXt chunk.
func minimalPNG() []byte {
	return buildPNG(ihdrChunk(), idatChunk(), iendChunk())
}

// textChunk encodes a tEXt chunk whose value is the Base64 of payload.
func textChunk(keyword, payload string) []byte {
	value := base64.StdEncoding.EncodeToString([]byte(payload))
	return rawTextChunk(keyword + "\x00" + value)
}

// rawTextChunk encodes a tEXt chunk with data used verbatim.
func rawTextChunk(data string) []byte {
	return pngutil.EncodeChunk(pngutil.TypeTEXT, []byte(data))
}

package cardpng

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ExportOptions configures Export.
type ExportOptions struct {
	// Compress wraps the output in a zstd stream.
	Compress bool
	// IncludeDuplicates also writes results flagged as Duplicate.
	IncludeDuplicates bool
}

// exportRecord is one line of the JSON Lines export.
type exportRecord struct {
	Name          string          `json:"name"`
	ImageDigest   string          `json:"image_digest"`
	PayloadDigest string          `json:"payload_digest,omitempty"`
	Keyword       string          `json:"keyword,omitempty"`
	Duplicate     bool            `json:"duplicate,omitempty"`
	Card          json.RawMessage `json:"card,omitempty"`
	Payload       string          `json:"payload,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Export writes one JSON object per line for every result that carried a
// card or failed to scan; images without a card are skipped. It returns the
// number of records written.
func Export(w io.Writer, results []ScanResult, opts ExportOptions) (int, error) {
	out := w
	var enc *zstd.Encoder
	if opts.Compress {
		var err error
		enc, err = zstd.NewWriter(w)
		if err != nil {
			return 0, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		out = enc
	}

	jsonEnc := json.NewEncoder(out)
	jsonEnc.SetEscapeHTML(false)

	written := 0
	for _, r := range results {
		if !r.Found && r.Err == nil {
			continue
		}
		if r.Duplicate && !opts.IncludeDuplicates {
			continue
		}
		rec := exportRecord{
			Name:          r.Name,
			ImageDigest:   r.ImageDigest.String(),
			PayloadDigest: r.PayloadDigest.String(),
			Keyword:       r.Keyword,
			Duplicate:     r.Duplicate,
		}
		if r.Found {
			if json.Valid([]byte(r.Payload)) {
				rec.Card = json.RawMessage(r.Payload)
			} else {
				rec.Payload = r.Payload
			}
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		if err := jsonEnc.Encode(&rec); err != nil {
			if enc != nil {
				enc.Close()
			}
			return written, fmt.Errorf("failed to write record for %s: %w", r.Name, err)
		}
		written++
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return written, fmt.Errorf("failed to flush zstd stream: %w", err)
		}
	}
	return written, nil
}

package cardpng

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/flaneur2020/card-png/cardpng/storage"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
)

// ProgressCallback is called while scanning to report progress
// current: bytes scanned so far
// total: total size of all listed card images
type ProgressCallback func(current int64, total int64)

// ScanOptions configures a Scanner.
type ScanOptions struct {
	// Workers bounds concurrent reads; values below 1 mean 1.
	Workers int
	// Keyword restricts the scan to one tEXt keyword. When empty, "ccv3" is
	// tried first and "chara" second.
	Keyword string
}

// ScanResult describes one scanned card image.
type ScanResult struct {
	Name          string
	Size          int64
	ImageDigest   digest.Digest
	PayloadDigest digest.Digest
	Found         bool
	Keyword       string
	Payload       string
	Card          *Card
	// Duplicate is set when an earlier result has the same image digest.
	Duplicate bool
	// Err holds the per-image failure; other images are still scanned.
	Err error
}

// ScanStats contains statistics about a scan
type ScanStats struct {
	TotalFiles int
	TotalBytes int64
	Cards      int
	NoCard     int
	Failed     int
	Duplicates int
}

// Scanner extracts cards from every image in a storage.
type Scanner struct {
	storage storage.Storage
	opts    ScanOptions
}

// NewScanner creates a Scanner over s.
func NewScanner(s storage.Storage, opts ScanOptions) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scanner{storage: s, opts: opts}
}

// Scan reads and decodes every listed image. Results come back in listing
// order. Codec and per-file read errors are recorded on the result; only
// listing failures and context cancellation abort the scan.
func (s *Scanner) Scan(ctx context.Context, progress ProgressCallback) ([]ScanResult, *ScanStats, error) {
	descs, err := s.storage.ListCards(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list cards: %w", err)
	}

	stats := &ScanStats{TotalFiles: len(descs)}
	for _, d := range descs {
		stats.TotalBytes += d.Size
	}
	if progress != nil {
		progress(0, stats.TotalBytes)
	}

	results := make([]ScanResult, len(descs))
	var (
		mu      sync.Mutex
		scanned int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, d := range descs {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := s.storage.ReadCard(gctx, d.Name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i] = ScanResult{Name: d.Name, Size: d.Size, Err: err}
			} else {
				results[i] = s.scanOne(d.Name, data)
			}

			if progress != nil {
				mu.Lock()
				scanned += d.Size
				progress(scanned, stats.TotalBytes)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	seen := make(map[digest.Digest]bool, len(results))
	for i := range results {
		r := &results[i]
		if r.ImageDigest != "" {
			if seen[r.ImageDigest] {
				r.Duplicate = true
				stats.Duplicates++
			}
			seen[r.ImageDigest] = true
		}
		switch {
		case r.Err != nil:
			stats.Failed++
			logger.Warn("failed to scan %s: %v", r.Name, r.Err)
		case r.Found:
			stats.Cards++
		default:
			stats.NoCard++
		}
	}
	return results, stats, nil
}

func (s *Scanner) scanOne(name string, data []byte) ScanResult {
	r := ScanResult{
		Name:        name,
		Size:        int64(len(data)),
		ImageDigest: digest.FromBytes(data),
	}

	keywords := []string{KeywordV3, KeywordV2}
	if s.opts.Keyword != "" {
		keywords = []string{s.opts.Keyword}
	}
	for _, keyword := range keywords {
		payload, found, err := ExtractKeyword(data, keyword)
		if err != nil {
			r.Err = err
			return r
		}
		if !found {
			continue
		}
		r.Found = true
		r.Keyword = keyword
		r.Payload = payload
		r.PayloadDigest = digest.FromString(payload)
		card, err := ParseCard([]byte(payload))
		if err != nil {
			r.Err = err
			return r
		}
		card.Keyword = keyword
		r.Card = card
		return r
	}

	logger.Debug("no card in %s", name)
	return r
}

// IsNotFound reports whether err means the stream or storage holds no card.
func IsNotFound(err error) bool {
	return errors.Is(err, cerrors.ErrCardNotFound)
}

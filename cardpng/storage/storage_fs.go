package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/spf13/afero"
)

// FsStorage stores card images as .png files below a root directory of an
// afero filesystem. Names are slash-separated paths relative to the root.
type FsStorage struct {
	fs   afero.Fs
	root string
}

// NewFsStorage creates a storage rooted at root on fs.
func NewFsStorage(fs afero.Fs, root string) *FsStorage {
	return &FsStorage{fs: fs, root: filepath.Clean(root)}
}

// NewOsStorage creates a storage rooted at a directory of the host filesystem.
func NewOsStorage(root string) *FsStorage {
	return NewFsStorage(afero.NewOsFs(), root)
}

// ListCards walks the root recursively and returns every .png file.
func (s *FsStorage) ListCards(ctx context.Context) ([]CardDescriptor, error) {
	var descs []CardDescriptor
	err := afero.Walk(s.fs, s.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".png") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		descs = append(descs, CardDescriptor{
			Name: filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cards under %s: %w", s.root, err)
	}

	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
	logger.Debug("found %d card image(s) under %s", len(descs), s.root)
	return descs, nil
}

// ReadCard reads a whole card image.
func (s *FsStorage) ReadCard(ctx context.Context, name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.NewCardNotFoundError(name)
		}
		return nil, fmt.Errorf("failed to read card %s: %w", name, err)
	}
	return data, nil
}

// WriteCard writes a card image, creating parent directories as needed.
func (s *FsStorage) WriteCard(ctx context.Context, name string, data []byte) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0644); err != nil {
		return fmt.Errorf("failed to write card %s: %w", name, err)
	}
	return nil
}

// resolve maps a storage name to a path, refusing names outside the root.
func (s *FsStorage) resolve(name string) (string, error) {
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("card name %q escapes the storage root", name)
		}
	}
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid card name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

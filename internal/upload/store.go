package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpu otherwise writes a configuration directory under the user's home.
func init() {
	api.DisableConfigDir()
}

var (
	ErrUnsupportedType = errors.New("invalid file format")
	ErrInvalidPDF      = errors.New("invalid pdf")
	ErrTooLarge        = errors.New("file too large")
)

// Stored describes a saved upload.
type Stored struct {
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Size     int64  `json:"size"`
}

// Store saves validated PDFs into the uploads namespace.
type Store struct {
	dir      string
	maxBytes int64
	log      *slog.Logger
}

// NewStore rejects uploads larger than maxBytes.
func NewStore(ns *storage.Namespaces, maxBytes int64, log *slog.Logger) (*Store, error) {
	dir, err := ns.Dir(storage.Uploads)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, maxBytes: maxBytes, log: log}, nil
}

// Save sanitizes rawName, checks that r holds a readable PDF no larger than
// the configured limit and stores it. An existing upload with the same
// sanitized name is replaced.
func (s *Store) Save(ctx context.Context, rawName string, r io.Reader) (Stored, error) {
	name, err := storage.Sanitize(rawName)
	if err != nil {
		return Stored{}, err
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return Stored{}, fmt.Errorf("%w: %q", ErrUnsupportedType, rawName)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Stored{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Stored{}, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	pages, err := inspect(data)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	_, err = storage.WriteAtomic(s.dir, name, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return Stored{}, fmt.Errorf("store upload: %w", err)
	}
	s.log.Info("stored upload", "filename", name, "pages", pages, "bytes", len(data))
	return Stored{Filename: name, Pages: pages, Size: int64(len(data))}, nil
}

func inspect(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return 0, err
	}
	return api.PageCount(bytes.NewReader(data), conf)
}

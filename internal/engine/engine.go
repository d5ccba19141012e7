package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RenderDPI is the resolution used for page images and OCR input.
const RenderDPI = 300

// Engine converts a stored source PDF into one or more artifacts and
// returns their paths in page order.
type Engine interface {
	Convert(ctx context.Context, sourcePath string) ([]string, error)
}

// ErrSourceNotFound is returned when the source PDF does not exist.
var ErrSourceNotFound = errors.New("source not found")

// ExtractionError wraps a failure while producing a text artifact.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string { return describe("extract text", e.Page, e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// AssemblyError wraps a failure while producing a word document.
type AssemblyError struct {
	Page int
	Err  error
}

func (e *AssemblyError) Error() string { return describe("assemble document", e.Page, e.Err) }
func (e *AssemblyError) Unwrap() error { return e.Err }

// RasterizationError wraps a failure while rendering page images.
type RasterizationError struct {
	Page int
	Err  error
}

func (e *RasterizationError) Error() string { return describe("rasterize", e.Page, e.Err) }
func (e *RasterizationError) Unwrap() error { return e.Err }

func describe(op string, page int, err error) string {
	if page > 0 {
		return fmt.Sprintf("%s page %d: %v", op, page, err)
	}
	return fmt.Sprintf("%s: %v", op, err)
}

func checkSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, filepath.Base(path))
		}
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, filepath.Base(path))
	}
	return nil
}

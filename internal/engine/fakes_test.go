package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSource creates a placeholder source file; fakes never parse it.
func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeReader struct {
	pages   []string
	pageErr map[int]error
	openErr error
	opened  int
	closed  int
}

func (r *fakeReader) Open(string) (TextDocument, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	r.opened++
	return &fakeDoc{r: r}, nil
}

type fakeDoc struct{ r *fakeReader }

func (d *fakeDoc) NumPage() int { return len(d.r.pages) }

func (d *fakeDoc) PageText(_ context.Context, page int) (string, error) {
	if err := d.r.pageErr[page]; err != nil {
		return "", err
	}
	return d.r.pages[page-1], nil
}

func (d *fakeDoc) Close() error {
	d.r.closed++
	return nil
}

type fakeRenderer struct {
	pages     int
	renderErr map[int]error
	openErr   error
	opened    int
	rendered  []int
	dpis      []float64
}

func (r *fakeRenderer) Open(string) (Raster, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	r.opened++
	return &fakeRaster{r: r}, nil
}

type fakeRaster struct{ r *fakeRenderer }

func (f *fakeRaster) NumPage() int { return f.r.pages }

func (f *fakeRaster) RenderPage(page int, dpi float64) (image.Image, error) {
	if err := f.r.renderErr[page]; err != nil {
		return nil, err
	}
	f.r.rendered = append(f.r.rendered, page)
	f.r.dpis = append(f.r.dpis, dpi)
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	// Encode the page number in a pixel so OCR fakes can read it back.
	img.SetGray(0, 0, color.Gray{Y: uint8(page)})
	return img, nil
}

func (f *fakeRaster) Close() error { return nil }

// fakeOCR returns texts keyed by the page number stored in pixel (0,0).
type fakeOCR struct {
	texts map[int]string
	err   error
	calls int
}

func (o *fakeOCR) Recognize(_ context.Context, img image.Image) (string, error) {
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	page := int(color.GrayModel.Convert(img.At(0, 0)).(color.Gray).Y)
	return o.texts[page], nil
}

var errBoom = errors.New("boom")

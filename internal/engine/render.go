package engine

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Raster renders the pages of an opened PDF.
type Raster interface {
	NumPage() int
	// RenderPage rasterizes a 1-based page at the given resolution.
	RenderPage(page int, dpi float64) (image.Image, error)
	Close() error
}

// Renderer opens PDFs for rasterization.
type Renderer interface {
	Open(path string) (Raster, error)
}

// FitzRenderer renders pages with MuPDF.
type FitzRenderer struct{}

func (FitzRenderer) Open(path string) (Raster, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &fitzRaster{doc: doc}, nil
}

type fitzRaster struct {
	doc *fitz.Document
}

func (r *fitzRaster) NumPage() int {
	return r.doc.NumPage()
}

func (r *fitzRaster) RenderPage(page int, dpi float64) (image.Image, error) {
	img, err := r.doc.ImageDPI(page-1, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *fitzRaster) Close() error {
	return r.doc.Close()
}

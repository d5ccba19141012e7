package engine

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/pdfconv/internal/storage"
)

// ImageEngine renders every page to <base>_<page>.png at RenderDPI.
type ImageEngine struct {
	renderer Renderer
	outDir   string
	log      *slog.Logger
}

// NewImageEngine writes artifacts into outDir.
func NewImageEngine(outDir string, renderer Renderer, log *slog.Logger) *ImageEngine {
	return &ImageEngine{renderer: renderer, outDir: outDir, log: log}
}

func (e *ImageEngine) Convert(ctx context.Context, sourcePath string) ([]string, error) {
	if err := checkSource(sourcePath); err != nil {
		return nil, err
	}

	raster, err := e.renderer.Open(sourcePath)
	if err != nil {
		return nil, &RasterizationError{Err: err}
	}
	defer raster.Close()

	source := filepath.Base(sourcePath)
	pages := raster.NumPage()
	paths := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &RasterizationError{Page: page, Err: err}
		}

		img, err := raster.RenderPage(page, RenderDPI)
		if err != nil {
			return nil, &RasterizationError{Page: page, Err: err}
		}

		path, err := storage.WriteAtomic(e.outDir, storage.ImageName(source, page), func(w io.Writer) error {
			return png.Encode(w, img)
		})
		if err != nil {
			return nil, &RasterizationError{Page: page, Err: err}
		}
		paths = append(paths, path)
	}

	e.log.Debug("rasterized pages", "pages", pages, "dpi", RenderDPI)
	return paths, nil
}

package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfconv/internal/storage"
)

// TextEngine writes the text of every page to <base>.txt. Pages without
// native text are rendered and run through OCR.
type TextEngine struct {
	reader   TextReader
	renderer Renderer
	ocr      OCR
	outDir   string
	log      *slog.Logger
}

// NewTextEngine writes artifacts into outDir.
func NewTextEngine(outDir string, reader TextReader, renderer Renderer, ocr OCR, log *slog.Logger) *TextEngine {
	return &TextEngine{
		reader:   reader,
		renderer: renderer,
		ocr:      ocr,
		outDir:   outDir,
		log:      log,
	}
}

func (e *TextEngine) Convert(ctx context.Context, sourcePath string) ([]string, error) {
	if err := checkSource(sourcePath); err != nil {
		return nil, err
	}

	text, err := e.extract(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	name := storage.TextName(filepath.Base(sourcePath))
	path, err := storage.WriteAtomic(e.outDir, name, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	return []string{path}, nil
}

func (e *TextEngine) extract(ctx context.Context, sourcePath string) (string, error) {
	doc, err := e.reader.Open(sourcePath)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	defer doc.Close()

	// Opened on the first page that needs OCR.
	var raster Raster
	defer func() {
		if raster != nil {
			raster.Close()
		}
	}()

	var buf strings.Builder
	for page := 1; page <= doc.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return "", &ExtractionError{Page: page, Err: err}
		}

		text, err := doc.PageText(ctx, page)
		if err != nil {
			return "", &ExtractionError{Page: page, Err: err}
		}

		if strings.TrimSpace(text) == "" {
			if raster == nil {
				raster, err = e.renderer.Open(sourcePath)
				if err != nil {
					return "", &ExtractionError{Page: page, Err: err}
				}
			}
			text, err = e.recognize(ctx, raster, page)
			if err != nil {
				return "", &ExtractionError{Page: page, Err: err}
			}
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func (e *TextEngine) recognize(ctx context.Context, raster Raster, page int) (string, error) {
	e.log.Debug("no native text, running ocr", "page", page)
	img, err := raster.RenderPage(page, RenderDPI)
	if err != nil {
		return "", err
	}
	return e.ocr.Recognize(ctx, img)
}

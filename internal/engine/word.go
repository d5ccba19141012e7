package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/fumiama/go-docx"
)

// WordEngine writes one paragraph per page into <base>.docx. It uses native
// text only; pages without a text layer become empty paragraphs.
type WordEngine struct {
	reader TextReader
	outDir string
	log    *slog.Logger
}

// NewWordEngine writes artifacts into outDir.
func NewWordEngine(outDir string, reader TextReader, log *slog.Logger) *WordEngine {
	return &WordEngine{reader: reader, outDir: outDir, log: log}
}

func (e *WordEngine) Convert(ctx context.Context, sourcePath string) ([]string, error) {
	if err := checkSource(sourcePath); err != nil {
		return nil, err
	}

	doc, err := e.reader.Open(sourcePath)
	if err != nil {
		return nil, &AssemblyError{Err: err}
	}
	defer doc.Close()

	w := docx.New().WithDefaultTheme()
	pages := doc.NumPage()
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &AssemblyError{Page: page, Err: err}
		}
		// TODO: decide with product whether scanned pages should get the
		// OCR fallback that TextEngine applies.
		text, err := doc.PageText(ctx, page)
		if err != nil {
			return nil, &AssemblyError{Page: page, Err: err}
		}
		w.AddParagraph().AddText(text)
	}

	name := storage.WordName(filepath.Base(sourcePath))
	path, err := storage.WriteAtomic(e.outDir, name, func(out io.Writer) error {
		_, err := w.WriteTo(out)
		return err
	})
	if err != nil {
		return nil, &AssemblyError{Err: err}
	}
	e.log.Debug("assembled document", "paragraphs", pages, "artifact", name)
	return []string{path}, nil
}

package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	pdflib "github.com/ledongthuc/pdf"
)

// TextDocument gives page-by-page access to native PDF text.
type TextDocument interface {
	NumPage() int
	// PageText returns the native text of a 1-based page.
	PageText(ctx context.Context, page int) (string, error)
	Close() error
}

// TextReader opens PDFs for native text extraction.
type TextReader interface {
	Open(path string) (TextDocument, error)
}

// PDFTextReader extracts text with the Go PDF library. When a page cannot
// be decoded and FallbackPdftotext is set, it shells out to pdftotext for
// that page only.
type PDFTextReader struct {
	FallbackPdftotext bool
	// PdftotextCommand defaults to "pdftotext" on PATH.
	PdftotextCommand string
}

func (r *PDFTextReader) Open(path string) (doc TextDocument, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("open pdf: %v", p)
		}
		if err != nil {
			f.Close()
			doc = nil
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	reader, err := pdflib.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	d := &pdfTextDocument{f: f, reader: reader, path: path}
	d.decode = d.nativePageText
	if r.FallbackPdftotext {
		d.fallback = r.PdftotextCommand
		if d.fallback == "" {
			d.fallback = "pdftotext"
		}
	}
	return d, nil
}

type pdfTextDocument struct {
	f      *os.File
	reader *pdflib.Reader
	path   string
	decode func(page int) (string, error)
	// fallback is the pdftotext command; empty disables it.
	fallback string
}

func (d *pdfTextDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d *pdfTextDocument) PageText(ctx context.Context, page int) (string, error) {
	text, err := d.decode(page)
	if err != nil && d.fallback != "" {
		text, err = pdftotextPage(ctx, d.fallback, d.path, page)
	}
	return text, err
}

// nativePageText recovers from panics: the PDF library panics on some
// malformed content streams instead of returning an error.
func (d *pdfTextDocument) nativePageText(page int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decode page %d: %v", page, p)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *pdfTextDocument) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

// pdftotextPage extracts a single page. -nopgbrk keeps the trailing form
// feed out of the output.
func pdftotextPage(ctx context.Context, command, path string, page int) (string, error) {
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, command, "-layout", "-nopgbrk", "-f", n, "-l", n, path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/pdfconv/internal/testpdf"
)

// brokenPagesReader opens real PDFs but fails native decoding of the
// listed pages.
type brokenPagesReader struct {
	PDFTextReader
	broken map[int]bool
}

func (r *brokenPagesReader) Open(path string) (TextDocument, error) {
	doc, err := r.PDFTextReader.Open(path)
	if err != nil {
		return nil, err
	}
	d := doc.(*pdfTextDocument)
	native := d.decode
	d.decode = func(page int) (string, error) {
		if r.broken[page] {
			return "", fmt.Errorf("decode page %d: malformed content stream", page)
		}
		return native(page)
	}
	return d, nil
}

// Mimics pdftotext: prints "page N" and a form feed unless -nopgbrk is set.
const pdftotextScript = `brk=$(printf '\f')
page=
while [ $# -gt 0 ]; do
	case "$1" in
	-nopgbrk) brk= ;;
	-f) page=$2 ;;
	esac
	shift
done
printf 'page %s\n%s' "$page" "$brk"
`

func TestPDFTextReader_PdftotextArguments(t *testing.T) {
	src := testpdf.Write(t, t.TempDir(), "two.pdf", "one", "two")
	cmd := fakeCommand(t, "pdftotext", `printf '%s|' "$@"`)
	reader := &brokenPagesReader{
		PDFTextReader: PDFTextReader{FallbackPdftotext: true, PdftotextCommand: cmd},
		broken:        map[int]bool{2: true},
	}

	doc, err := reader.Open(src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer doc.Close()

	got, err := doc.PageText(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "-layout|-nopgbrk|-f|2|-l|2|" + src + "|-|"
	if got != want {
		t.Errorf("expected args %q, got %q", want, got)
	}
}

func TestTextEngine_PdftotextFallbackNoSeparator(t *testing.T) {
	src := testpdf.Write(t, t.TempDir(), "broken.pdf", "one", "two")
	out := t.TempDir()
	reader := &brokenPagesReader{
		PDFTextReader: PDFTextReader{
			FallbackPdftotext: true,
			PdftotextCommand:  fakeCommand(t, "pdftotext", pdftotextScript),
		},
		broken: map[int]bool{1: true, 2: true},
	}
	ocr := &fakeOCR{}

	e := NewTextEngine(out, reader, &fakeRenderer{pages: 2}, ocr, discardLogger())
	paths, err := e.Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "page 1\npage 2\n" {
		t.Errorf("unexpected content %q", got)
	}
	if ocr.calls != 0 {
		t.Errorf("expected no OCR for recovered pages, got %d calls", ocr.calls)
	}
}

func TestTextEngine_DecodeFailureWithoutFallback(t *testing.T) {
	src := testpdf.Write(t, t.TempDir(), "broken.pdf", "one", "two")
	out := t.TempDir()
	reader := &brokenPagesReader{broken: map[int]bool{2: true}}

	e := NewTextEngine(out, reader, &fakeRenderer{pages: 2}, &fakeOCR{}, discardLogger())
	_, err := e.Convert(context.Background(), src)

	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if extractErr.Page != 2 {
		t.Errorf("expected page 2, got %d", extractErr.Page)
	}
	if _, statErr := os.Stat(filepath.Join(out, "broken.txt")); !os.IsNotExist(statErr) {
		t.Errorf("expected no artifact, stat returned %v", statErr)
	}
}

func TestPDFTextReader_NullPageIsEmpty(t *testing.T) {
	src := testpdf.Write(t, t.TempDir(), "one.pdf", "only")

	doc, err := (&PDFTextReader{}).Open(src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer doc.Close()

	d := doc.(*pdfTextDocument)
	// Past the last page the page tree yields a null object.
	text, err := d.nativePageText(d.NumPage() + 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestPDFTextReader_OpenFailureClosesFile(t *testing.T) {
	if _, err := os.ReadDir("/proc/self/fd"); err != nil {
		t.Skip("needs /proc/self/fd")
	}
	path := filepath.Join(t.TempDir(), "junk.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\ntruncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	openFDs := func() int {
		entries, _ := os.ReadDir("/proc/self/fd")
		return len(entries)
	}

	before := openFDs()
	for i := 0; i < 50; i++ {
		doc, err := (&PDFTextReader{}).Open(path)
		if err == nil {
			doc.Close()
			t.Fatal("expected error opening truncated file")
		}
		if doc != nil {
			t.Fatalf("expected nil document on error, got %T", doc)
		}
	}
	if after := openFDs(); after > before+5 {
		t.Errorf("expected open files to stay near %d, got %d", before, after)
	}
}

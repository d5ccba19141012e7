package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTextEngine_NativeTextOnly(t *testing.T) {
	src := writeSource(t, "Report-1.pdf")
	out := t.TempDir()
	reader := &fakeReader{pages: []string{"Page one.\n", "Page two.\n"}}
	renderer := &fakeRenderer{pages: 2}
	ocr := &fakeOCR{}

	e := NewTextEngine(out, reader, renderer, ocr, discardLogger())
	paths, err := e.Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(out, "Report-1.txt") {
		t.Fatalf("unexpected paths %v", paths)
	}

	got, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Page one.\nPage two.\n" {
		t.Errorf("unexpected content %q", got)
	}
	if renderer.opened != 0 || ocr.calls != 0 {
		t.Errorf("expected no OCR for text pages, renderer opened %d, ocr calls %d", renderer.opened, ocr.calls)
	}
	if reader.closed != 1 {
		t.Errorf("expected document to be closed once, got %d", reader.closed)
	}
}

func TestTextEngine_OCRFallback(t *testing.T) {
	src := writeSource(t, "scan.pdf")
	out := t.TempDir()
	reader := &fakeReader{pages: []string{"native", "  \n\t", "", "tail"}}
	renderer := &fakeRenderer{pages: 4}
	ocr := &fakeOCR{texts: map[int]string{2: "ocr-two", 3: ""}}

	e := NewTextEngine(out, reader, renderer, ocr, discardLogger())
	paths, err := e.Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := os.ReadFile(paths[0])
	// Page 3 has no text in either layer and still contributes nothing.
	if string(got) != "nativeocr-twotail" {
		t.Errorf("unexpected content %q", got)
	}
	if ocr.calls != 2 {
		t.Errorf("expected 2 OCR calls, got %d", ocr.calls)
	}
	if renderer.opened != 1 {
		t.Errorf("expected renderer to be opened once, got %d", renderer.opened)
	}
	if len(renderer.rendered) != 2 || renderer.rendered[0] != 2 || renderer.rendered[1] != 3 {
		t.Errorf("expected pages 2 and 3 rendered, got %v", renderer.rendered)
	}
	for _, dpi := range renderer.dpis {
		if dpi != RenderDPI {
			t.Errorf("expected render at %d dpi, got %v", RenderDPI, dpi)
		}
	}
}

func TestTextEngine_Overwrites(t *testing.T) {
	src := writeSource(t, "doc.pdf")
	out := t.TempDir()
	reader := &fakeReader{pages: []string{"first"}}
	e := NewTextEngine(out, reader, &fakeRenderer{}, &fakeOCR{}, discardLogger())

	if _, err := e.Convert(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	reader.pages = []string{"second"}
	if _, err := e.Convert(context.Background(), src); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 1 {
		t.Fatalf("expected 1 file after re-conversion, got %d", len(entries))
	}
	got, _ := os.ReadFile(filepath.Join(out, "doc.txt"))
	if string(got) != "second" {
		t.Errorf("expected overwritten content, got %q", got)
	}
}

func TestTextEngine_SourceNotFound(t *testing.T) {
	e := NewTextEngine(t.TempDir(), &fakeReader{}, &fakeRenderer{}, &fakeOCR{}, discardLogger())
	_, err := e.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestTextEngine_FailuresLeaveNoArtifact(t *testing.T) {
	tests := []struct {
		name     string
		reader   *fakeReader
		renderer *fakeRenderer
		ocr      *fakeOCR
		page     int
	}{
		{"open", &fakeReader{openErr: errBoom}, &fakeRenderer{}, &fakeOCR{}, 0},
		{"page", &fakeReader{pages: []string{"a", "b"}, pageErr: map[int]error{2: errBoom}}, &fakeRenderer{}, &fakeOCR{}, 2},
		{"render open", &fakeReader{pages: []string{""}}, &fakeRenderer{openErr: errBoom}, &fakeOCR{}, 1},
		{"render page", &fakeReader{pages: []string{"a", ""}}, &fakeRenderer{pages: 2, renderErr: map[int]error{2: errBoom}}, &fakeOCR{}, 2},
		{"ocr", &fakeReader{pages: []string{""}}, &fakeRenderer{pages: 1}, &fakeOCR{err: errBoom}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			e := NewTextEngine(out, tt.reader, tt.renderer, tt.ocr, discardLogger())
			_, err := e.Convert(context.Background(), writeSource(t, "x.pdf"))

			var extractErr *ExtractionError
			if !errors.As(err, &extractErr) {
				t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
			}
			if extractErr.Page != tt.page {
				t.Errorf("expected page %d, got %d", tt.page, extractErr.Page)
			}
			if !errors.Is(err, errBoom) {
				t.Errorf("expected cause to be preserved, got %v", err)
			}
			entries, _ := os.ReadDir(out)
			if len(entries) != 0 {
				t.Errorf("expected no files after failure, got %d", len(entries))
			}
		})
	}
}

func TestTextEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewTextEngine(t.TempDir(), &fakeReader{pages: []string{"a"}}, &fakeRenderer{}, &fakeOCR{}, discardLogger())
	_, err := e.Convert(ctx, writeSource(t, "x.pdf"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

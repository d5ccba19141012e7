// Package testpdf generates small real PDFs for tests.
package testpdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Bytes returns a PDF with one page per entry of pages, each page showing
// its text in Helvetica.
func Bytes(t testing.TB, pages ...string) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	for _, text := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generate pdf: %v", err)
	}
	return buf.Bytes()
}

// Write stores a generated PDF as dir/name and returns its path.
func Write(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Bytes(t, pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

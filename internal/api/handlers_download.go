package api

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/go-chi/chi/v5"
)

// handleDownload serves an artifact from the namespace of its kind only.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	kind, err := storage.ParseKind(chi.URLParam(r, "conversion_type"))
	if err != nil {
		jsonError(w, "Invalid conversion type", http.StatusBadRequest)
		return
	}

	// chi matches on RawPath when it is set, leaving the segment escaped.
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			jsonError(w, "File not found", http.StatusNotFound)
			return
		}
		name = unescaped
	}

	path, err := s.ns.Locate(string(kind), name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidName) {
			s.log.Error("locate artifact", "conversion_type", kind, "filename", name, "error", err)
		}
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}

	base := filepath.Base(path)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": base}))
	http.ServeContent(w, r, base, info.ModTime(), f)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/dgallion1/pdfconv/internal/upload"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "No file part", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := s.uploads.Save(r.Context(), header.Filename, file)
	switch {
	case err == nil:
	case errors.Is(err, upload.ErrTooLarge):
		jsonError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrInvalidPDF), errors.Is(err, storage.ErrInvalidName):
		s.log.Info("upload rejected", "filename", header.Filename, "error", err)
		jsonError(w, "Invalid file format", http.StatusBadRequest)
		return
	default:
		s.log.Error("upload failed", "filename", header.Filename, "error", err)
		jsonError(w, "Error saving file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":  "File uploaded successfully",
		"filename": stored.Filename,
		"pages":    stored.Pages,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

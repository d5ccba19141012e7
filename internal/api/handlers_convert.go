package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/pdfconv/internal/convert"
	"github.com/dgallion1/pdfconv/internal/engine"
	"github.com/dgallion1/pdfconv/internal/storage"
)

type convertRequest struct {
	Filename       string `json:"filename"`
	ConversionType string `json:"conversion_type"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "Missing filename or conversion type", http.StatusBadRequest)
		return
	}

	artifacts, err := s.dispatcher.Convert(r.Context(), req.Filename, req.ConversionType)
	switch {
	case err == nil:
	case errors.Is(err, convert.ErrMissingField):
		jsonError(w, "Missing filename or conversion type", http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrInvalidKind):
		jsonError(w, "Invalid conversion type", http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrInvalidName):
		jsonError(w, "Invalid filename", http.StatusBadRequest)
		return
	case errors.Is(err, engine.ErrSourceNotFound):
		jsonError(w, "File not found", http.StatusNotFound)
		return
	default:
		jsonError(w, "Error converting file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"converted_files": artifacts})
}

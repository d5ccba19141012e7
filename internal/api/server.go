package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/pdfconv/internal/config"
	"github.com/dgallion1/pdfconv/internal/convert"
	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/dgallion1/pdfconv/internal/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pdfconv.
type Server struct {
	router     chi.Router
	dispatcher *convert.Dispatcher
	uploads    *upload.Store
	ns         *storage.Namespaces
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(dispatcher *convert.Dispatcher, uploads *upload.Store, ns *storage.Namespaces, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		dispatcher: dispatcher,
		uploads:    uploads,
		ns:         ns,
		log:        log,
		cfg:        cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS)

	r.Get("/health", s.handleHealth)

	r.Post("/upload", s.handleUpload)
	r.Post("/converted", s.handleConvert)
	r.Get("/download/{conversion_type}/{filename}", s.handleDownload)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

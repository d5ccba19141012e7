package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfconv/internal/api"
	"github.com/dgallion1/pdfconv/internal/config"
	"github.com/dgallion1/pdfconv/internal/convert"
	"github.com/dgallion1/pdfconv/internal/engine"
	"github.com/dgallion1/pdfconv/internal/storage"
	"github.com/dgallion1/pdfconv/internal/upload"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Storage namespaces.
	nsCfg := storage.DefaultConfig(cfg.DataDir)
	ns, err := storage.New(nsCfg)
	if err != nil {
		log.Error("invalid storage layout", "error", err)
		os.Exit(1)
	}
	if err := ns.Ensure(); err != nil {
		log.Error("create storage directories", "error", err)
		os.Exit(1)
	}

	// Conversion engines.
	reader := &engine.PDFTextReader{
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		PdftotextCommand:  cfg.PdftotextCommand,
	}
	renderer := engine.FitzRenderer{}
	ocr := &engine.TesseractOCR{Command: cfg.OCRCommand, Language: cfg.OCRLanguage}
	engines := map[storage.Kind]engine.Engine{
		storage.KindText:  engine.NewTextEngine(nsCfg.TextDir, reader, renderer, ocr, log.With("engine", "text")),
		storage.KindWord:  engine.NewWordEngine(nsCfg.WordDir, reader, log.With("engine", "word")),
		storage.KindImage: engine.NewImageEngine(nsCfg.ImageDir, renderer, log.With("engine", "image")),
	}

	dispatcher, err := convert.NewDispatcher(ns, engines, convert.Options{
		MaxConcurrent: cfg.MaxConcurrentConversions,
		Timeout:       cfg.ConvertTimeout,
	}, log)
	if err != nil {
		log.Error("create dispatcher", "error", err)
		os.Exit(1)
	}

	uploads, err := upload.NewStore(ns, cfg.MaxUploadBytes, log)
	if err != nil {
		log.Error("create upload store", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP server.
	srv := api.NewServer(dispatcher, uploads, ns, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting pdfconv", "port", cfg.Port, "data_dir", cfg.DataDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

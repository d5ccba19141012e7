package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/pdfconv/internal/engine"
	"github.com/dgallion1/pdfconv/internal/storage"
	"golang.org/x/sync/semaphore"
)

// Stage is a step in the life of a single conversion request.
type Stage string

const (
	StageReceived       Stage = "received"
	StageValidated      Stage = "validated"
	StageSourceResolved Stage = "source_resolved"
	StageConverted      Stage = "converted"
	StageReported       Stage = "reported"
	StageFailed         Stage = "failed"
)

// ErrMissingField is returned when the filename or kind is empty.
var ErrMissingField = errors.New("missing filename or conversion type")

// ProcessingError reports an engine failure. Its message is the cause's
// message only.
type ProcessingError struct {
	Kind storage.Kind
	Err  error
}

func (e *ProcessingError) Error() string { return e.Err.Error() }
func (e *ProcessingError) Unwrap() error { return e.Err }

// Artifact names one produced file.
type Artifact struct {
	Type     storage.Kind `json:"type"`
	Filename string       `json:"filename"`
}

// Options bound engine work. Zero values mean one conversion at a time and
// no timeout.
type Options struct {
	MaxConcurrent int
	Timeout       time.Duration
}

// Dispatcher validates conversion requests and routes them to engines.
type Dispatcher struct {
	ns      *storage.Namespaces
	engines map[storage.Kind]engine.Engine
	sem     *semaphore.Weighted
	timeout time.Duration
	log     *slog.Logger
}

// NewDispatcher requires an engine for every kind.
func NewDispatcher(ns *storage.Namespaces, engines map[storage.Kind]engine.Engine, opts Options, log *slog.Logger) (*Dispatcher, error) {
	for _, k := range storage.Kinds {
		if engines[k] == nil {
			return nil, fmt.Errorf("no engine for conversion type %q", k)
		}
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Dispatcher{
		ns:      ns,
		engines: engines,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		timeout: opts.Timeout,
		log:     log,
	}, nil
}

// Convert turns a stored upload into artifacts of the given kind and
// returns them in page order. Re-running with the same input overwrites
// the same artifact names.
func (d *Dispatcher) Convert(ctx context.Context, filename, kind string) ([]Artifact, error) {
	log := d.log.With("filename", filename, "conversion_type", kind)
	stage := StageReceived
	log.Debug("conversion", "stage", stage)

	fail := func(err error) ([]Artifact, error) {
		log.Warn("conversion failed", "stage", StageFailed, "after", stage, "error", err)
		return nil, err
	}

	if filename == "" || kind == "" {
		return fail(ErrMissingField)
	}
	k, err := storage.ParseKind(kind)
	if err != nil {
		return fail(err)
	}
	name, err := storage.Sanitize(filename)
	if err != nil {
		return fail(err)
	}
	stage = StageValidated
	log.Debug("conversion", "stage", stage)

	source, err := d.ns.Locate(storage.Uploads, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(fmt.Errorf("%w: %s", engine.ErrSourceNotFound, name))
		}
		return fail(err)
	}
	stage = StageSourceResolved
	log.Debug("conversion", "stage", stage)

	paths, err := d.run(ctx, k, source)
	if err != nil {
		if errors.Is(err, engine.ErrSourceNotFound) {
			return fail(err)
		}
		return fail(&ProcessingError{Kind: k, Err: err})
	}
	stage = StageConverted
	log.Debug("conversion", "stage", stage)

	artifacts := make([]Artifact, len(paths))
	for i, p := range paths {
		artifacts[i] = Artifact{Type: k, Filename: filepath.Base(p)}
	}
	log.Info("converted", "stage", StageReported, "source", name, "artifacts", len(artifacts))
	return artifacts, nil
}

func (d *Dispatcher) run(ctx context.Context, kind storage.Kind, source string) ([]string, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for conversion slot: %w", err)
	}
	defer d.sem.Release(1)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	paths, err := d.engines[kind].Convert(ctx, source)
	d.log.Debug("engine finished", "conversion_type", kind, "duration_ms", time.Since(start).Milliseconds(), "ok", err == nil)
	return paths, err
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind selects a conversion engine and its output namespace.
type Kind string

const (
	KindText  Kind = "text"
	KindWord  Kind = "word"
	KindImage Kind = "image"
)

// Uploads is the namespace name for stored source PDFs.
const Uploads = "uploads"

// Kinds lists every conversion kind in a stable order.
var Kinds = []Kind{KindText, KindWord, KindImage}

var (
	ErrInvalidKind = errors.New("invalid conversion type")
	ErrNotFound    = errors.New("file not found")
)

// ParseKind validates a conversion type string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindText, KindWord, KindImage:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Config holds the directory of every namespace.
type Config struct {
	UploadDir string
	TextDir   string
	WordDir   string
	ImageDir  string
}

// DefaultConfig lays the namespaces out under root the way the service
// always has: uploads/, converted/text, converted/word, converted/images.
func DefaultConfig(root string) Config {
	converted := filepath.Join(root, "converted")
	return Config{
		UploadDir: filepath.Join(root, "uploads"),
		TextDir:   filepath.Join(converted, "text"),
		WordDir:   filepath.Join(converted, "word"),
		ImageDir:  filepath.Join(converted, "images"),
	}
}

// Namespaces maps uploads and each conversion kind to a directory.
type Namespaces struct {
	cfg Config
}

// New rejects empty or shared directories. It does not touch the filesystem.
func New(cfg Config) (*Namespaces, error) {
	dirs := []string{cfg.UploadDir, cfg.TextDir, cfg.WordDir, cfg.ImageDir}
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if d == "" {
			return nil, fmt.Errorf("namespace directory must not be empty")
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", d, err)
		}
		if seen[abs] {
			return nil, fmt.Errorf("namespace directory %s is used twice", abs)
		}
		seen[abs] = true
	}
	return &Namespaces{cfg: cfg}, nil
}

// Ensure creates all namespace directories. Safe to call repeatedly.
func (n *Namespaces) Ensure() error {
	for _, d := range []string{n.cfg.UploadDir, n.cfg.TextDir, n.cfg.WordDir, n.cfg.ImageDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create namespace %s: %w", d, err)
		}
	}
	return nil
}

// Resolve returns the output directory for a conversion kind.
func (n *Namespaces) Resolve(kind Kind) (string, error) {
	switch kind {
	case KindText:
		return n.cfg.TextDir, nil
	case KindWord:
		return n.cfg.WordDir, nil
	case KindImage:
		return n.cfg.ImageDir, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

// Dir accepts "uploads" or a conversion kind name.
func (n *Namespaces) Dir(name string) (string, error) {
	if name == Uploads {
		return n.cfg.UploadDir, nil
	}
	return n.Resolve(Kind(name))
}

// Locate returns the path of an existing file inside a namespace. The
// filename is sanitized first and the result may never leave the
// namespace directory.
func (n *Namespaces) Locate(namespace, filename string) (string, error) {
	dir, err := n.Dir(namespace)
	if err != nil {
		return "", err
	}
	name, err := Sanitize(filename)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel != name || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidName, filename, namespace)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, name)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, name)
	}
	return path, nil
}

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned when a filename sanitizes to nothing.
var ErrInvalidName = errors.New("invalid filename")

// Sanitize turns a client-supplied filename into a safe artifact identifier.
// The result contains only [A-Za-z0-9._-], never starts or ends with one of
// "._-", and never contains "..". Sanitize is idempotent.
func Sanitize(raw string) (string, error) {
	// Strip directory components.
	name := strings.ReplaceAll(raw, `\`, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	// Fold to ASCII.
	var ascii strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}

	name = strings.Join(strings.Fields(ascii.String()), "-")

	var buf strings.Builder
	lastDot := false
	for _, r := range name {
		switch {
		case r == '.':
			if !lastDot {
				buf.WriteRune(r)
			}
			lastDot = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			buf.WriteRune(r)
			lastDot = false
		}
	}

	name = strings.Trim(buf.String(), "._-")
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, raw)
	}
	return name, nil
}

// BaseName returns a sanitized name with its final extension removed.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// TextName is the text artifact name for a source.
func TextName(source string) string {
	return BaseName(source) + ".txt"
}

// WordName is the word-processor artifact name for a source.
func WordName(source string) string {
	return BaseName(source) + ".docx"
}

// ImageName is the artifact name for a 1-based page of a source.
func ImageName(source string, page int) string {
	return fmt.Sprintf("%s_%d.png", BaseName(source), page)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
)

// OCR recognizes text in a rendered page image.
type OCR interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TesseractOCR runs the tesseract CLI on a temporary PNG.
type TesseractOCR struct {
	Command  string
	Language string
}

func (t *TesseractOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	tmp, err := os.CreateTemp("", "pdfconv-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode page image: %w", err)
	}
	tmp.Close()

	command := t.Command
	if command == "" {
		command = "tesseract"
	}
	args := []string{tmpPath, "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}

	out, err := exec.CommandContext(ctx, command, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s: %w: %s", command, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", command, err)
	}
	return string(out), nil
}

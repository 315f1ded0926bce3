package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileBytes matches the backend's upload cap.
const DefaultMaxFileBytes = 5 * 1024 * 1024

var pdfMagic = []byte("%PDF")

var (
	ErrNotPDF   = errors.New("only PDF files are supported")
	ErrTooLarge = errors.New("file too large")
	ErrEmpty    = errors.New("file is empty")
)

// Validate rejects a file locally before any bytes go over the wire. It
// applies the same checks the backend does: .pdf extension, the %PDF
// magic prefix, and the size cap.
func Validate(path string, maxBytes int64) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrEmpty)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return fmt.Errorf("%s is %d bytes, cap is %d: %w", filepath.Base(path), info.Size(), maxBytes, ErrTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("read file header: %w", err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("%s lacks the PDF header: %w", filepath.Base(path), ErrNotPDF)
	}

	return nil
}

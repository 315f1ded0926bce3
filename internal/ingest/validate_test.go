package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateAcceptsPDF(t *testing.T) {
	path := writeFile(t, "doc.pdf", []byte("%PDF-1.4\nsome content"))
	if err := Validate(path, DefaultMaxFileBytes); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("%PDF-1.4"))
	err := Validate(path, DefaultMaxFileBytes)
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("Validate() = %v, want ErrNotPDF", err)
	}
}

func TestValidateRejectsMissingMagic(t *testing.T) {
	path := writeFile(t, "fake.pdf", []byte("plain text pretending"))
	err := Validate(path, DefaultMaxFileBytes)
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("Validate() = %v, want ErrNotPDF", err)
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	path := writeFile(t, "empty.pdf", nil)
	err := Validate(path, DefaultMaxFileBytes)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Validate() = %v, want ErrEmpty", err)
	}
}

func TestValidateRejectsOversize(t *testing.T) {
	path := writeFile(t, "big.pdf", []byte("%PDF-1.4 plus plenty of padding"))
	err := Validate(path, 8)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Validate() = %v, want ErrTooLarge", err)
	}
}

func TestValidateUppercaseExtension(t *testing.T) {
	path := writeFile(t, "DOC.PDF", []byte("%PDF-1.7"))
	if err := Validate(path, DefaultMaxFileBytes); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	if err := Validate(filepath.Join(t.TempDir(), "gone.pdf"), DefaultMaxFileBytes); err == nil {
		t.Error("Validate() accepted a missing file")
	}
}

package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a document type by its file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
	FormatPPTX Format = "pptx"
	FormatTXT  Format = "txt"
)

// ErrUnsupportedFormat is returned when a backend cannot read the file type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Backend converts a document into a single plain-text string.
//
// Pages (or sheets, for spreadsheets) are emitted in document order. An
// implementation either returns the full text or an error, never both.
type Backend interface {
	Name() string
	SupportedFormats() []Format
	Extract(ctx context.Context, path string) (string, error)
}

// DetectFormat returns the document format based on file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".pptx":
		return FormatPPTX, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supports reports whether b lists f among its formats.
func Supports(b Backend, f Format) bool {
	for _, sf := range b.SupportedFormats() {
		if sf == f {
			return true
		}
	}
	return false
}

// checkFormat detects the format of path and verifies b can read it.
func checkFormat(b Backend, path string) (Format, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	if !Supports(b, f) {
		return "", fmt.Errorf("%w: %s backend reads %v, not %s", ErrUnsupportedFormat, b.Name(), b.SupportedFormats(), f)
	}
	return f, nil
}

// recoverPDF converts a panic raised by a PDF library on malformed input into
// an error. It must be deferred directly.
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed PDF: %v", r)
	}
}

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunobiangulo/docsection"
	"github.com/brunobiangulo/docsection/internal/pdftest"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeText(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCommand(t *testing.T) {
	path := writeText(t, "SUMMARY\nShort.\n")

	code, out, _ := runCLI(t, "extract", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "SUMMARY\nShort.")
}

func TestExtractAllOnPDF(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "doc.pdf", []string{"INTRODUCTION", "Body text here."})

	code, out, errOut := runCLI(t, "extract", "-backend", "all", path)
	require.Equal(t, 0, code, errOut)
	for _, name := range []string{"Plain", "Rows", "Stream"} {
		assert.Contains(t, out, docsection.Banner(name))
	}
}

func TestSearchCommand(t *testing.T) {
	path := writeText(t, "INTRODUCTION\nFirst.\n\nMETHODS\nSecond.\n")

	code, out, _ := runCLI(t, "search", path, "methods")
	require.Equal(t, 0, code)
	assert.Equal(t, "METHODS\nSecond.\n", out)

	code, out, _ = runCLI(t, "search", path, "results")
	require.Equal(t, 0, code)
	assert.Equal(t, docsection.NoMatchesFound+"\n", out)
}

func TestCompareCommand(t *testing.T) {
	path := writeText(t, "TITLE\nline\n")

	code, out, _ := runCLI(t, "compare", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "BACKEND")
	assert.Contains(t, out, "Plain")
	assert.Contains(t, out, "Stream")
}

func TestCommandErrors(t *testing.T) {
	path := writeText(t, "x\n")

	code, _, errOut := runCLI(t, "extract", "-backend", "OCR", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown backend")

	code, _, _ = runCLI(t, "extract", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "extract")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "bogus")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t)
	assert.Equal(t, 2, code)
}

// Package docsection extracts plain text from documents with several
// independent backends and finds titled sections in the extracted text.
//
// Usage:
//
//	ex, err := docsection.New(docsection.DefaultConfig(), nil)
//	sess := docsection.NewSession(ex)
//	if _, err := sess.Load(ctx, "/path/to/report.pdf", docsection.SelectAll); err != nil {
//		return err
//	}
//	results, _ := sess.Search("introduction")
package docsection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/brunobiangulo/docsection/parser"
)

// SelectAll runs every registered backend and concatenates their output.
const SelectAll = "All (Compare)"

// BackendText is one backend's output, as framed in comparison mode.
type BackendText struct {
	Backend string `json:"backend"`
	Text    string `json:"text"`
}

// BackendResult is one backend's outcome in Compare. Err is nil on success.
type BackendResult struct {
	Backend string         `json:"backend"`
	Text    string         `json:"text,omitempty"`
	Quality parser.Quality `json:"quality"`
	Elapsed time.Duration  `json:"elapsed"`
	Err     error          `json:"-"`
}

// Banner returns the marker line placed before a backend's output.
func Banner(backend string) string {
	return "--- Text Extracted using " + backend + " ---"
}

// Aggregate frames each part with its banner and joins parts with a blank line.
func Aggregate(parts []BackendText) string {
	framed := make([]string, len(parts))
	for i, p := range parts {
		framed[i] = Banner(p.Backend) + "\n" + p.Text
	}
	return strings.Join(framed, "\n\n")
}

type cacheKey struct {
	backend string
	path    string
	size    int64
	modTime int64
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%d", k.backend, k.path, k.size, k.modTime)
}

// Extractor dispatches extraction to one or all backends of a registry.
// It is safe for concurrent use; backends themselves run sequentially
// within one request.
type Extractor struct {
	cfg      Config
	registry *parser.Registry
	logger   *slog.Logger

	cache *lru.Cache[cacheKey, string]
	group singleflight.Group
}

// New creates an Extractor. A nil registry means parser.NewRegistry().
func New(cfg Config, registry *parser.Registry) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.defaults()
	if registry == nil {
		registry = parser.NewRegistry()
	}

	e := &Extractor{
		cfg:      cfg,
		registry: registry,
		logger:   cfg.Logger,
	}

	if cfg.CacheSize > 0 {
		c, err := lru.New[cacheKey, string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating extraction cache: %w", err)
		}
		e.cache = c
	}

	if _, _, err := e.resolve(cfg.DefaultBackend); err != nil {
		return nil, fmt.Errorf("%w: default_backend: %v", ErrInvalidConfig, err)
	}
	return e, nil
}

// Selections lists the valid selections: backend names in order, then SelectAll.
func (e *Extractor) Selections() []string {
	return append(e.registry.Names(), SelectAll)
}

// Backends returns the backend names in comparison order.
func (e *Extractor) Backends() []string {
	return e.registry.Names()
}

// Extract returns the text of the document at path using selection, which is
// a backend name, SelectAll, or "" for the configured default.
//
// In SelectAll mode backends run in registry order and the first failure
// aborts the request; no partial comparison is returned.
func (e *Extractor) Extract(ctx context.Context, path, selection string) (string, error) {
	backends, all, err := e.resolve(selection)
	if err != nil {
		return "", err
	}
	if selection == "" {
		selection = e.cfg.DefaultBackend
	}

	info, err := e.inspect(path)
	if err != nil {
		return "", &ExtractionError{Backend: selection, Err: err}
	}

	if !all {
		return e.extractOne(ctx, backends[0], path, info)
	}

	parts := make([]BackendText, 0, len(backends))
	for _, b := range backends {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.extractOne(ctx, b, path, info)
		if err != nil {
			return "", err
		}
		parts = append(parts, BackendText{Backend: b.Name(), Text: text})
	}
	return Aggregate(parts), nil
}

// Compare runs every backend separately and reports each outcome, so one
// failing backend does not hide the others. The returned error is set only
// when the file itself cannot be used (missing, too large, unknown type).
func (e *Extractor) Compare(ctx context.Context, path string) ([]BackendResult, error) {
	info, err := e.inspect(path)
	if err != nil {
		return nil, &ExtractionError{Backend: SelectAll, Err: err}
	}

	var results []BackendResult
	for _, b := range e.registry.Backends() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		text, err := e.extractOne(ctx, b, path, info)
		r := BackendResult{
			Backend: b.Name(),
			Elapsed: time.Since(start),
			Err:     err,
		}
		if err == nil {
			r.Text = text
			r.Quality = parser.Measure(text)
		}
		results = append(results, r)
	}
	return results, nil
}

// resolve maps a selection to backends. all is true for SelectAll.
func (e *Extractor) resolve(selection string) (backends []parser.Backend, all bool, err error) {
	if selection == "" {
		selection = e.cfg.DefaultBackend
	}
	if strings.EqualFold(selection, SelectAll) || strings.EqualFold(selection, "all") {
		return e.registry.Backends(), true, nil
	}
	b, err := e.registry.Get(selection)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownBackend, selection, strings.Join(e.Selections(), ", "))
	}
	return []parser.Backend{b}, false, nil
}

// inspect checks that path is a regular file of a known type within the
// size limit.
func (e *Extractor) inspect(path string) (os.FileInfo, error) {
	if _, err := parser.DetectFormat(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > e.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), e.cfg.MaxFileSize)
	}
	return info, nil
}

func (e *Extractor) extractOne(ctx context.Context, b parser.Backend, path string, info os.FileInfo) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := cacheKey{backend: b.Name(), path: abs, size: info.Size(), modTime: info.ModTime().UnixNano()}

	if e.cache != nil {
		if text, ok := e.cache.Get(key); ok {
			e.logger.Debug("extraction cache hit", "backend", b.Name(), "path", path)
			return text, nil
		}
	}

	v, err, shared := e.group.Do(key.String(), func() (any, error) {
		start := time.Now()
		text, err := b.Extract(ctx, path)
		if err != nil {
			return "", err
		}
		e.logger.Debug("extracted document",
			"backend", b.Name(),
			"path", path,
			"chars", len(text),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		if e.cache != nil {
			e.cache.Add(key, text)
		}
		return text, nil
	})
	if err != nil {
		return "", &ExtractionError{Backend: b.Name(), Err: err}
	}
	if shared {
		e.logger.Debug("extraction shared with concurrent request", "backend", b.Name(), "path", path)
	}
	return v.(string), nil
}

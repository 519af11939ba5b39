package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brunobiangulo/docsection"
)

type handler struct {
	sess    *docsection.Session
	root    string // server-side paths must resolve inside root; "" allows none
	timeout time.Duration
}

func newHandler(s *docsection.Session, documentRoot string) *handler {
	return &handler{sess: s, root: documentRoot, timeout: 5 * time.Minute}
}

var errPathNotAllowed = errors.New("path outside the document root")

// resolvePath maps a client-supplied path to a file under h.root. Relative
// paths are taken from the root; symlinks are resolved before the check.
func (h *handler) resolvePath(p string) (string, error) {
	if h.root == "" {
		return "", errPathNotAllowed
	}
	absRoot, err := filepath.Abs(h.root)
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	if !within(absRoot, p) && !within(root, p) {
		return "", errPathNotAllowed
	}
	target, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	if !within(root, target) {
		return "", errPathNotAllowed
	}
	return target, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// POST /extract
// Accepts multipart file upload (field "file", optional form field
// "backend") or JSON {"path": ..., "backend": ...}.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var path, backend string

	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Keep the extension for format detection; drop the rest of the
			// client-supplied name.
			tmp, err := os.CreateTemp("", "docsection-*"+filepath.Ext(filepath.Base(header.Filename)))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			defer os.Remove(tmp.Name())

			if _, err := io.Copy(tmp, file); err != nil {
				tmp.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			tmp.Close()

			path = tmp.Name()
			backend = r.FormValue("backend")
		}
	}

	if path == "" {
		var req struct {
			Path    string `json:"path"`
			Backend string `json:"backend"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path'")
			return
		}
		resolved, err := h.resolvePath(req.Path)
		if err != nil {
			writeExtractionError(w, err)
			return
		}
		path, backend = resolved, req.Backend
	}

	text, err := h.sess.Load(ctx, path, backend)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	_, selection, _ := h.sess.Source()
	writeJSON(w, http.StatusOK, map[string]any{
		"backend": selection,
		"text":    text,
	})
}

// POST /search
func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := h.sess.Search(req.Query)
	if err != nil {
		if errors.Is(err, docsection.ErrNoDocument) {
			writeError(w, http.StatusConflict, "no document extracted yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		slog.Error("search error", "error", err)
		return
	}
	if results == nil {
		results = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

type compareEntry struct {
	Backend   string  `json:"backend"`
	Chars     int     `json:"chars"`
	Lines     int     `json:"lines"`
	Headings  int     `json:"headings"`
	Printable float64 `json:"printable_ratio"`
	ElapsedMs int64   `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

// POST /compare
func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	path, err := h.resolvePath(req.Path)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	results, err := h.sess.Extractor().Compare(ctx, path)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	entries := make([]compareEntry, 0, len(results))
	for _, res := range results {
		e := compareEntry{
			Backend:   res.Backend,
			Chars:     res.Quality.Chars,
			Lines:     res.Quality.Lines,
			Headings:  res.Quality.Headings,
			Printable: res.Quality.PrintableRatio,
			ElapsedMs: res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		entries = append(entries, e)
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": entries})
}

// GET /backends
func (h *handler) handleBackends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"backends":   h.sess.Extractor().Backends(),
		"selections": h.sess.Extractor().Selections(),
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	path, selection, loaded := h.sess.Source()
	resp := map[string]any{"status": "ok", "loaded": loaded}
	if loaded {
		resp["path"] = path
		resp["backend"] = selection
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeExtractionError maps extraction failures to status codes.
func writeExtractionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errPathNotAllowed):
		writeError(w, http.StatusForbidden, "server-side path not allowed; upload the file or configure document_root")
	case errors.Is(err, docsection.ErrUnknownBackend):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, docsection.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, docsection.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "extraction timed out")
	case errors.Is(err, docsection.ErrExtractionFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "extraction failed")
		slog.Error("extract error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

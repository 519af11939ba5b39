package docsection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []string
	}{
		{
			name:  "match",
			text:  "INTRODUCTION\nHello world.\n\nMETHODS\nWe did X.",
			query: "introduction",
			want:  []string{"INTRODUCTION\nHello world."},
		},
		{
			name:  "stops before next heading",
			text:  "METHODS\nStep one.\nStep two.\nRESULTS\nDone.",
			query: "methods",
			want:  []string{"METHODS\nStep one.\nStep two."},
		},
		{
			name:  "no match reports marker",
			text:  "foo bar baz",
			query: "missing",
			want:  []string{NoMatchesFound},
		},
		{
			name:  "empty query is a no-op",
			text:  "INTRODUCTION\nHello",
			query: "",
			want:  nil,
		},
		{
			name:  "whitespace query is a no-op",
			text:  "INTRODUCTION\nHello",
			query: "  \t ",
			want:  nil,
		},
		{
			name:  "surrounding spaces are part of the title",
			text:  "INTRODUCTION\nHello",
			query: "  introduction ",
			want:  []string{NoMatchesFound},
		},
		{
			name:  "spaced title matches a spaced line",
			text:  "1.  Results and discussion\nbody\n\ntail",
			query: " results ",
			want:  []string{"1.  Results and discussion\nbody"},
		},
		{
			name:  "empty text",
			text:  "",
			query: "anything",
			want:  []string{NoMatchesFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Search(tt.text, tt.query))
		})
	}
}

func TestSession_SearchBeforeLoad(t *testing.T) {
	sess := NewSession(newTestExtractor(t, DefaultConfig(), nil))

	_, err := sess.Search("introduction")
	assert.ErrorIs(t, err, ErrNoDocument)

	_, _, ok := sess.Source()
	assert.False(t, ok)
	assert.Empty(t, sess.Text())
}

func TestSession_LoadReplacesText(t *testing.T) {
	a, b, c := threeFakes()
	a.text = "INTRODUCTION\nfirst doc"
	sess := NewSession(newTestExtractor(t, DefaultConfig(), fakeRegistry(a, b, c)))
	path := writeFile(t, "doc.txt", "ignored")
	ctx := context.Background()

	_, err := sess.Load(ctx, path, "")
	require.NoError(t, err)

	results, err := sess.Search("introduction")
	require.NoError(t, err)
	assert.Equal(t, []string{"INTRODUCTION\nfirst doc"}, results)

	gotPath, selection, ok := sess.Source()
	assert.True(t, ok)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "Plain", selection)

	text, err := sess.Load(ctx, path, "Rows")
	require.NoError(t, err)
	assert.Equal(t, "beta text", text)
	assert.Equal(t, "beta text", sess.Text())

	results, err = sess.Search("introduction")
	require.NoError(t, err)
	assert.Equal(t, []string{NoMatchesFound}, results)
}

func TestSession_FailedLoadKeepsPreviousText(t *testing.T) {
	good := &fakeBackend{name: "Plain", text: "SCOPE\nkept"}
	bad := &fakeBackend{name: "Rows", err: errors.New("unreadable")}
	sess := NewSession(newTestExtractor(t, DefaultConfig(), fakeRegistry(good, bad)))
	path := writeFile(t, "doc.txt", "ignored")
	ctx := context.Background()

	_, err := sess.Load(ctx, path, "Plain")
	require.NoError(t, err)

	_, err = sess.Load(ctx, path, SelectAll)
	require.ErrorIs(t, err, ErrExtractionFailed)

	assert.Equal(t, "SCOPE\nkept", sess.Text())
	_, selection, _ := sess.Source()
	assert.Equal(t, "Plain", selection)
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_backend: Stream
cache_size: 4
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Stream", cfg.DefaultBackend)
	assert.Equal(t, 4, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/srv/docs", cfg.DocumentRoot)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultConfig().MaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsection.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_backend": "All (Compare)", "max_file_size": 1024}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SelectAll, cfg.DefaultBackend)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cache_size: -1\n"), 0o644))
	_, err := LoadConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	toml := filepath.Join(dir, "conf.toml")
	require.NoError(t, os.WriteFile(toml, []byte("x = 1"), 0o644))
	_, err = LoadConfig(toml)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"DOCSECTION_DEFAULT_BACKEND": "Rows",
		"DOCSECTION_CACHE_SIZE":      "0",
		"DOCSECTION_LOG_FORMAT":      "json",
		"DOCSECTION_DOCUMENT_ROOT":   "/srv/docs",
	}
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "Rows", cfg.DefaultBackend)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/srv/docs", cfg.DocumentRoot)

	env["DOCSECTION_MAX_FILE_SIZE"] = "lots"
	assert.ErrorIs(t, cfg.ApplyEnv(func(k string) string { return env[k] }), ErrInvalidConfig)
}

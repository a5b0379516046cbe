package models

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "whisper-bridge/internal/app/errors"
)

func TestLookup(t *testing.T) {
	m, ok := Lookup("tiny")
	require.True(t, ok)
	assert.Equal(t, "ggml-tiny.bin", m.File)

	m, ok = Lookup("ggml-large-v3-turbo.bin")
	require.True(t, ok)
	assert.Equal(t, "large-v3-turbo", m.Name)

	_, ok = Lookup("gpt-4")
	assert.False(t, ok)

	assert.True(t, IsCatalogName("base.en"))
	assert.False(t, IsCatalogName("whisper-1"))
	assert.IsIncreasing(t, Names())
}

func TestModelURL(t *testing.T) {
	m, _ := Lookup("base")
	assert.Equal(t, DefaultBaseURL+"ggml-base.bin", m.URL(""))
	assert.Equal(t, "http://mirror.local/models/ggml-base.bin", m.URL("http://mirror.local/models/"))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	r := &Resolver{Dir: dir}

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.bin")
		require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))

		got, err := r.Resolve(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("short name in dir", func(t *testing.T) {
		path := filepath.Join(dir, "ggml-tiny.bin")
		require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))

		got, err := r.Resolve(ctx, "tiny")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("file name in dir", func(t *testing.T) {
		path := filepath.Join(dir, "my-finetune.bin")
		require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))

		got, err := r.Resolve(ctx, "my-finetune.bin")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("not downloaded", func(t *testing.T) {
		_, err := r.Resolve(ctx, "medium")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrModelNotFound))
		assert.Contains(t, err.Error(), "models download medium")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := r.Resolve(ctx, "enormous")
		assert.True(t, errors.Is(err, apperrors.ErrModelNotFound))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := r.Resolve(ctx, "  ")
		assert.ErrorContains(t, err, "model is required")
	})
}

func TestDefaultDirFromEnv(t *testing.T) {
	t.Setenv("WHISPER_MODELS_DIR", "/opt/models")
	assert.Equal(t, "/opt/models", DefaultDir())
}

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x67}, 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ggml-tiny.bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	var progress bytes.Buffer
	d := &Downloader{BaseURL: server.URL, HTTPClient: server.Client(), Progress: &progress}

	m, _ := Lookup("tiny")
	path, err := d.Download(context.Background(), m, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ggml-tiny.bin"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.NoFileExists(t, path+".download")
	assert.True(t, IsDownloaded(dir, m))
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := &Downloader{BaseURL: server.URL, HTTPClient: server.Client()}

	m, _ := Lookup("base")
	_, err := d.Download(context.Background(), m, dir)
	assert.ErrorContains(t, err, "HTTP 404")
	assert.NoFileExists(t, filepath.Join(dir, m.File))
	assert.NoFileExists(t, filepath.Join(dir, m.File+".download"))
}

func TestResolveAutoDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ggml"))
	}))
	defer server.Close()

	dir := t.TempDir()
	r := &Resolver{
		Dir:          dir,
		AutoDownload: true,
		Downloader:   &Downloader{BaseURL: server.URL, HTTPClient: server.Client()},
	}

	path, err := r.Resolve(context.Background(), "small.en")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ggml-small.en.bin"), path)
}

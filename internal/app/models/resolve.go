package models

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "whisper-bridge/internal/app/errors"
)

// DefaultDir returns the directory models are stored in: $WHISPER_MODELS_DIR,
// else ~/.cache/whisper-bridge/models.
func DefaultDir() string {
	if dir := strings.TrimSpace(os.Getenv("WHISPER_MODELS_DIR")); dir != "" {
		return dir
	}
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "whisper-bridge", "models")
	}
	return filepath.Join(os.TempDir(), "whisper-bridge", "models")
}

// IsDownloaded checks if a model file exists in the given directory.
func IsDownloaded(dir string, m Model) bool {
	info, err := os.Stat(filepath.Join(dir, m.File))
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

// Resolver maps a model name onto a file on disk.
type Resolver struct {
	Dir          string
	AutoDownload bool
	Downloader   *Downloader
	Logger       *zap.Logger
}

// Resolve returns the path of the named model.
//
// An existing file path is returned unchanged. Otherwise the name is looked up
// as a file inside Dir, then as a catalog entry. A catalog model that is not on
// disk is downloaded when AutoDownload is set.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.RequiredField("model")
	}

	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}

	dir := r.Dir
	if dir == "" {
		dir = DefaultDir()
	}

	for _, candidate := range []string{name, "ggml-" + name + ".bin"} {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	m, ok := Lookup(name)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrModelNotFound, "unknown model %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	if IsDownloaded(dir, m) {
		return filepath.Join(dir, m.File), nil
	}
	if !r.AutoDownload {
		return "", apperrors.Wrapf(apperrors.ErrModelNotFound,
			"model %s is not downloaded to %s (run `whisper-bridge models download %s` or set WHISPER_AUTO_DOWNLOAD=true)", m.Name, dir, m.Name)
	}

	d := r.Downloader
	if d == nil {
		d = NewDownloader(r.logger())
	}
	return d.Download(ctx, m, dir)
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

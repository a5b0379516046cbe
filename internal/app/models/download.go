package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
)

// Downloader fetches ggml model files.
type Downloader struct {
	BaseURL    string
	HTTPClient *http.Client
	// Progress receives the progress bar. nil disables it.
	Progress io.Writer
	Logger   *zap.Logger
}

// NewDownloader returns a downloader that reports progress on stderr.
func NewDownloader(logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Minute},
		Progress:   os.Stderr,
		Logger:     logger,
	}
}

// Download fetches m into dir and returns the final path.
// The body is streamed to <file>.download and renamed once complete, so a
// partial file never shadows a good one.
func (d *Downloader) Download(ctx context.Context, m Model, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}

	destPath := filepath.Join(dir, m.File)
	tmpPath := destPath + ".download"
	url := m.URL(d.BaseURL)

	logger := d.logger().With(zap.String("model", m.Name), zap.String("url", url))
	logger.Info("Downloading model", zap.String("size", m.Size), zap.String("dest", destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", m.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: HTTP %d", m.Name, resp.StatusCode)
	}

	out, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = m.SizeBytes
	}

	written, err := d.copyWithProgress(ctx, out, resp.Body, m.Name, total)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download %s: %w", m.Name, err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download %s: short body (%d of %d bytes)", m.Name, written, resp.ContentLength)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize download: %w", err)
	}

	logger.Info("Model downloaded", zap.Int64("bytes", written), zap.String("path", destPath))
	return destPath, nil
}

func (d *Downloader) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, name string, total int64) (int64, error) {
	if d.Progress == nil {
		return io.Copy(dst, src)
	}

	p := mpb.NewWithContext(ctx,
		mpb.WithOutput(d.Progress),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30), " done"),
		),
	)

	proxy := bar.ProxyReader(src)
	written, err := io.Copy(dst, proxy)
	proxy.Close()

	if err != nil {
		bar.Abort(false)
	} else {
		// Content-Length may have been a guess from the catalog.
		bar.SetTotal(-1, true)
	}
	p.Wait()
	return written, err
}

func (d *Downloader) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadError reports a failed model download. The partial file has been
// removed by the time the caller sees it.
type DownloadError struct {
	Model string
	URL   string
	Err   error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Model, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Progress receives download updates. total is -1 when the server does not
// report a length.
type Progress func(file string, received, total int64)

// Downloader fetches model presets from the hub.
type Downloader struct {
	// BaseURL overrides the hub endpoint, used by tests.
	BaseURL string

	client *http.Client
}

// NewDownloader creates a downloader with a long timeout suited to
// multi-gigabyte files.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			// No overall timeout: large models legitimately take hours.
			// Cancellation comes from the caller's context.
			Timeout: 0,
		},
	}
}

func (d *Downloader) baseURL() string {
	if d.BaseURL != "" {
		return d.BaseURL
	}
	return hubBaseURL
}

// Download fetches the preset into modelDir and returns the local path to
// hand to the matching backend. Already-present files are skipped.
func (d *Downloader) Download(ctx context.Context, model ModelOption, modelDir string, progress Progress) (string, error) {
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", &DownloadError{Model: model.ID, Err: err}
	}

	target := localPathFor(model, modelDir)

	if model.FileName != "" {
		if isComplete(model, target) {
			return target, nil
		}
		url := fmt.Sprintf("%s/%s/resolve/main/%s", d.baseURL(), model.Repo, model.FileName)
		if err := d.fetchFile(ctx, url, target, model.FileName, progress); err != nil {
			return "", &DownloadError{Model: model.ID, URL: url, Err: err}
		}
		return target, nil
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return "", &DownloadError{Model: model.ID, Err: err}
	}
	for _, file := range model.Files {
		dest := filepath.Join(target, file)
		if info, err := os.Stat(dest); err == nil && !info.IsDir() {
			continue
		}
		url := fmt.Sprintf("%s/%s/resolve/main/%s", d.baseURL(), model.Repo, file)
		if err := d.fetchFile(ctx, url, dest, file, progress); err != nil {
			return "", &DownloadError{Model: model.ID, URL: url, Err: err}
		}
	}
	return target, nil
}

// fetchFile downloads one file through a temporary path so an interrupted
// download never leaves a truncated model behind.
func (d *Downloader) fetchFile(ctx context.Context, url, dest, name string, progress Progress) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	total := resp.ContentLength
	var received int64
	reader := &progressReader{
		r: resp.Body,
		report: func(n int64) {
			received += n
			if progress != nil {
				progress(name, received, total)
			}
		},
	}

	_, copyErr := io.Copy(out, reader)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		if copyErr != nil {
			return fmt.Errorf("download interrupted: %w", copyErr)
		}
		return fmt.Errorf("failed to write file: %w", closeErr)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// progressReader reports bytes as they pass through.
type progressReader struct {
	r      io.Reader
	report func(int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.report(int64(n))
	}
	return n, err
}

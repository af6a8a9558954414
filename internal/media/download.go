package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/h2non/filetype"
)

// Downloader stages remote media for adapters that cannot publish by URL.
// Twitter needs a local file for its chunked upload endpoint; LinkedIn needs
// the raw bytes for its registered upload sessions.
type Downloader struct {
	client *http.Client
}

func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client}
}

func (d *Downloader) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error downloading media: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, url)
	}
	return resp, nil
}

// Bytes downloads url fully into memory and sniffs its MIME type.
func (d *Downloader) Bytes(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := d.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading media body: %w", err)
	}
	return data, DetectContentType(data), nil
}

// TempFile downloads url to a temporary file and returns its path, sniffed
// MIME type and a cleanup func. The caller always runs cleanup.
func (d *Downloader) TempFile(ctx context.Context, url string) (string, string, func(), error) {
	resp, err := d.fetch(ctx, url)
	if err != nil {
		return "", "", nil, err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp("", "postrelay-media-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("error creating temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("error writing media to temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return "", "", nil, err
	}

	head := make([]byte, 262)
	n, _ := io.ReadFull(f, head)
	f.Close()

	return f.Name(), DetectContentType(head[:n]), func() { os.Remove(f.Name()) }, nil
}

// DetectContentType sniffs the MIME type from leading bytes, falling back to
// a generic type when the signature is unknown.
func DetectContentType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

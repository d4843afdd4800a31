package media

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// maxDownloadBytes bounds a single image download.
const maxDownloadBytes = 32 << 20 // 32MB

// PhotoURLBuilder turns an opaque curated-photo handle into a download URL
// at a requested width. The places client implements this.
type PhotoURLBuilder interface {
	PhotoMediaURL(photoName string, maxWidth int) string
}

// Fetcher downloads winning images from either the curated photo endpoint
// or a direct external URL, and resizes them to a profile.
type Fetcher struct {
	Photos     PhotoURLBuilder
	HTTPClient *http.Client
	UserAgent  string
	Usage      *domain.Usage
	Log        zerolog.Logger
}

// FetchCurated downloads a curated photo by resource name at the
// profile's fetch width and cover-resizes it.
func (f *Fetcher) FetchCurated(ctx context.Context, photoName string, profile ResizeProfile) ([]byte, error) {
	fetchWidth := profile.FetchWidth
	if fetchWidth <= 0 {
		fetchWidth = profile.Width * 2
	}
	raw, err := f.download(ctx, f.Photos.PhotoMediaURL(photoName, fetchWidth))
	if err != nil {
		return nil, err
	}
	return ResizeCover(raw, profile)
}

// FetchDirect downloads an external image URL and cover-resizes it. The
// original bytes are returned alongside the JPEG so callers can inspect
// embedded rights metadata before re-encoding strips it.
func (f *Fetcher) FetchDirect(ctx context.Context, rawURL string, profile ResizeProfile) (resized, raw []byte, err error) {
	raw, err = f.download(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	resized, err = ResizeCover(raw, profile)
	if err != nil {
		return nil, nil, err
	}
	return resized, raw, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	if f.Usage != nil {
		f.Usage.Downloads++
	}

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed (%d): %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

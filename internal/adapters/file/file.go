package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxDownloadSize caps how much of a response body is read.
const MaxDownloadSize = 10 << 20

// Downloader fetches remote files over HTTP for modules that need them.
type Downloader struct {
	client    *http.Client
	userAgent string
}

func NewDownloader(timeout time.Duration, userAgent string) *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Download returns the byte content of a file on a provided URL.
func (d *Downloader) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	res, err := d.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, MaxDownloadSize+1))
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	if len(buf) > MaxDownloadSize {
		err = fmt.Errorf("download exceeds %d bytes", MaxDownloadSize)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	return buf, nil
}

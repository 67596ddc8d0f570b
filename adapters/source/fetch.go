package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"happydash/internal/errors"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a remote dataset is read
const maxBodyBytes = 64 << 20

// Fetcher opens dataset locations: http(s) URLs are fetched, anything else is a local path
type Fetcher struct {
	client   *http.Client
	logger   *zap.Logger
	maxBytes int64
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout (0 = no timeout)
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		maxBytes: maxBodyBytes,
	}
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Open returns the content at location. The caller closes the reader.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsRemote(location) {
		file, err := os.Open(location)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", location)
		}
		return file, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request for %s", location)
	}
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("dataset host", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.New(errors.CodeExternalService,
			fmt.Sprintf("dataset host answered %s", resp.Status))
	}

	if resp.ContentLength > f.maxBytes {
		resp.Body.Close()
		return nil, errors.New(errors.CodeExternalService,
			fmt.Sprintf("dataset exceeds %d bytes (Content-Length %d)", f.maxBytes, resp.ContentLength))
	}

	f.logger.Debug("dataset fetched",
		zap.String("location", location),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return &cappedBody{body: resp.Body, remaining: f.maxBytes, limit: f.maxBytes}, nil
}

// cappedBody fails the read once more than the allowed bytes arrive, so an oversized
// dataset is never mistaken for a complete one
type cappedBody struct {
	body      io.ReadCloser
	remaining int64
	limit     int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.body.Read(p)
	if int64(n) > b.remaining {
		return int(b.remaining), errors.New(errors.CodeExternalService,
			fmt.Sprintf("dataset exceeds %d bytes", b.limit))
	}
	b.remaining -= int64(n)
	return n, err
}

func (b *cappedBody) Close() error {
	return b.body.Close()
}

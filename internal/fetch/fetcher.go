// Package fetch retrieves the raw bytes behind a stored file reference.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single retrieval attempt.
const DefaultTimeout = 30 * time.Second

// maxDiagnosticLen keeps diagnostics short enough for one status line.
const maxDiagnosticLen = 120

// Downloader is one retrieval strategy for a bare file ID.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Result is the outcome of one fetch. Exactly one of Data and Diagnostic is set.
type Result struct {
	FileID     string
	Data       []byte
	Diagnostic string
}

// OK reports whether bytes were retrieved.
func (r Result) OK() bool {
	return len(r.Data) > 0
}

// Fetcher resolves references and downloads them, trying the authenticated
// API first and the public direct-download path second. It never returns an
// error value; failures are reported through Result.Diagnostic.
type Fetcher struct {
	primary  Downloader
	fallback Downloader
	timeout  time.Duration
}

// New creates a Fetcher. Either strategy may be nil, in which case it is
// reported as unavailable. A non-positive timeout selects DefaultTimeout.
func New(primary, fallback Downloader, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{primary: primary, fallback: fallback, timeout: timeout}
}

// Fetch retrieves the bytes for ref. At most two strategies are tried, each
// bounded by the fetcher's timeout, and there are no further retries.
func (f *Fetcher) Fetch(ctx context.Context, ref string) Result {
	fileID, diag := NormalizeReference(ref)
	if diag != "" {
		return Result{Diagnostic: diag}
	}
	logCtx := slog.With("fileId", fileID)

	data, err := f.attempt(ctx, f.primary, fileID)
	if err == nil {
		logCtx.Info("Drive API download succeeded.", "bytes", len(data))
		return Result{FileID: fileID, Data: data}
	}
	logCtx.Warn("Drive API download failed, trying direct download.", "error", err)

	data, err = f.attempt(ctx, f.fallback, fileID)
	if err == nil {
		logCtx.Info("Direct download succeeded.", "bytes", len(data))
		return Result{FileID: fileID, Data: data}
	}
	logCtx.Warn("All download strategies failed.", "error", err)
	return Result{FileID: fileID, Diagnostic: truncate("direct download: "+err.Error(), maxDiagnosticLen)}
}

func (f *Fetcher) attempt(ctx context.Context, d Downloader, fileID string) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("strategy not configured")
	}
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := d.Download(attemptCtx, fileID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("returned empty content")
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

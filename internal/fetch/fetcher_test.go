package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDownloader struct {
	data  []byte
	err   error
	calls []string
	wait  bool
}

func (s *stubDownloader) Download(ctx context.Context, fileID string) ([]byte, error) {
	s.calls = append(s.calls, fileID)
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.data, s.err
}

const validID = "1AbCdEfGhIjKlMnOp"

func TestFetchPrimarySuccess(t *testing.T) {
	primary := &stubDownloader{data: []byte("%PDF-1.4 body")}
	fallback := &stubDownloader{}

	res := New(primary, fallback, time.Second).Fetch(context.Background(), "https://drive.google.com/file/d/"+validID+"/view")
	require.True(t, res.OK())
	assert.Equal(t, validID, res.FileID)
	assert.Empty(t, res.Diagnostic)
	assert.Equal(t, []string{validID}, primary.calls)
	assert.Empty(t, fallback.calls)
}

func TestFetchFallsBackOnPrimaryFailure(t *testing.T) {
	tests := map[string]*stubDownloader{
		"error":         {err: errors.New("api status 403: forbidden")},
		"empty payload": {data: []byte{}},
	}
	for name, primary := range tests {
		t.Run(name, func(t *testing.T) {
			fallback := &stubDownloader{data: []byte("payload")}
			res := New(primary, fallback, time.Second).Fetch(context.Background(), validID)
			require.True(t, res.OK())
			assert.Equal(t, []byte("payload"), res.Data)
			assert.Len(t, fallback.calls, 1)
		})
	}
}

func TestFetchReportsLastFailure(t *testing.T) {
	primary := &stubDownloader{err: errors.New("api status 404: not found")}
	fallback := &stubDownloader{err: errors.New("status=404, size=0")}

	res := New(primary, fallback, time.Second).Fetch(context.Background(), validID)
	assert.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Equal(t, "direct download: status=404, size=0", res.Diagnostic)
}

func TestFetchInvalidReferenceSkipsNetwork(t *testing.T) {
	primary := &stubDownloader{data: []byte("x")}
	fallback := &stubDownloader{data: []byte("x")}

	res := New(primary, fallback, time.Second).Fetch(context.Background(), "short")
	assert.False(t, res.OK())
	assert.Contains(t, res.Diagnostic, "too short")
	assert.Empty(t, primary.calls)
	assert.Empty(t, fallback.calls)
}

func TestFetchNilStrategies(t *testing.T) {
	res := New(nil, nil, 0).Fetch(context.Background(), validID)
	assert.False(t, res.OK())
	assert.Equal(t, "direct download: strategy not configured", res.Diagnostic)
}

func TestFetchBoundsEachAttempt(t *testing.T) {
	primary := &stubDownloader{wait: true}
	fallback := &stubDownloader{wait: true}

	start := time.Now()
	res := New(primary, fallback, 20*time.Millisecond).Fetch(context.Background(), validID)
	assert.False(t, res.OK())
	assert.Contains(t, res.Diagnostic, "deadline exceeded")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchTruncatesDiagnostic(t *testing.T) {
	fallback := &stubDownloader{err: errors.New(strings.Repeat("e", 500))}
	res := New(nil, fallback, time.Second).Fetch(context.Background(), validID)
	assert.Len(t, res.Diagnostic, maxDiagnosticLen)
}

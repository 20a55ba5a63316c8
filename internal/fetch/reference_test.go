package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReference(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		wantID string
		diag   string
	}{
		{"raw id", "1AbCdEfGhIjKlMnOp", "1AbCdEfGhIjKlMnOp", ""},
		{"raw id with whitespace", "  1AbCdEfGhIjKlMnOp\n", "1AbCdEfGhIjKlMnOp", ""},
		{"file view url", "https://drive.example.com/file/d/ABCDEFGHIJKL123/view", "ABCDEFGHIJKL123", ""},
		{"drive file url", "https://drive.google.com/file/d/1AbC_dEf-GhIjKl/view?usp=sharing", "1AbC_dEf-GhIjKl", ""},
		{"docs url", "https://docs.google.com/document/d/1AbCdEfGhIjKl/edit", "1AbCdEfGhIjKl", ""},
		{"query id", "https://drive.google.com/uc?export=download&id=1AbCdEfGhIjKl", "1AbCdEfGhIjKl", ""},
		{"open id", "https://drive.google.com/open?id=1AbCdEfGhIjKl", "1AbCdEfGhIjKl", ""},
		{"raw id with suffix", "1AbCdEfGhIjKl/view", "1AbCdEfGhIjKl", ""},
		{"raw id with query", "1AbCdEfGhIjKl?usp=sharing", "1AbCdEfGhIjKl", ""},
		{"empty", "", "", "empty file ID"},
		{"null", "null", "", "empty file ID"},
		{"url without id", "https://drive.google.com/drive/my-drive", "", "could not extract ID from URL"},
		{"too short", "abc123", "", `invalid file ID (too short): "abc123"`},
		{"url with short id", "https://drive.google.com/file/d/short/view", "", `invalid file ID (too short): "short"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, diag := NormalizeReference(tt.ref)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.diag, diag)
		})
	}
}

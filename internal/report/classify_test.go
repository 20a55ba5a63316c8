package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"empty", nil, KindUnknown},
		{"short pdf prefix", []byte("%PD"), KindUnknown},
		{"pdf", []byte("%PDF-1.7\n..."), KindPDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, KindImage},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00}, KindImage},
		{"truncated png signature", []byte{0x89, 'P', 'N', 'G'}, KindUnknown},
		{"html", []byte("<!DOCTYPE html>"), KindUnknown},
		{"pdf magic not at start", []byte(" %PDF-1.4"), KindUnknown},
		{"docx zip", []byte("PK\x03\x04"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.data))
			assert.Equal(t, tt.want, Classify(tt.data), "classification must be stable")
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pdf", KindPDF.String())
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

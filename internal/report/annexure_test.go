package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleAnnexure(t *testing.T) {
	brand := DefaultBranding()
	sec, err := NewBuilder(&brand).TitleAnnexure("Event Agenda")
	require.NoError(t, err)
	assert.Equal(t, 1, sec.Pages)
	assert.Equal(t, KindPDF, Classify(sec.PDF))

	n, err := CountPages(sec.PDF)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImageAnnexure(t *testing.T) {
	brand := DefaultBranding()
	b := NewBuilder(&brand)

	for name, data := range map[string][]byte{"jpeg": makeJPEG(t), "png": makePNG(t)} {
		t.Run(name, func(t *testing.T) {
			sec, err := b.ImageAnnexure(data, "Chief Guest Biodata")
			require.NoError(t, err)
			assert.True(t, sec.Embedded)
			assert.Empty(t, sec.Note)
			assert.Equal(t, 1, sec.Pages)
		})
	}
}

func TestImageAnnexureCorruptImageGetsPlaceholder(t *testing.T) {
	brand := DefaultBranding()
	corrupt := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("not really a jpeg")...)

	sec, err := NewBuilder(&brand).ImageAnnexure(corrupt, "KPI Report")
	require.NoError(t, err)
	assert.False(t, sec.Embedded)
	assert.NotEmpty(t, sec.Note)
	assert.Equal(t, 1, sec.Pages)

	n, err := CountPages(sec.PDF)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrepareImage(t *testing.T) {
	img, err := prepareImage(makeJPEG(t))
	require.NoError(t, err)
	assert.Equal(t, "JPG", img.imageType)

	img, err = prepareImage(makePNG(t))
	require.NoError(t, err)
	assert.Equal(t, "PNG", img.imageType)
	assert.Equal(t, 40, img.width)
	assert.Equal(t, 20, img.height)

	w, h := img.fitBox(100, 100)
	assert.InDelta(t, 100, w, 0.001)
	assert.InDelta(t, 50, h, 0.001)

	_, err = prepareImage([]byte("nope"))
	assert.Error(t, err)
}

func TestPrepareImageRejectsOversizedHeader(t *testing.T) {
	_, err := prepareImage(pngHeader(40000, 40000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too large: 40000x40000")

	_, err = prepareImage(pngHeader(0, 10))
	assert.Error(t, err)
}

func TestImageAnnexureOversizedImageGetsPlaceholder(t *testing.T) {
	brand := DefaultBranding()
	sec, err := NewBuilder(&brand).ImageAnnexure(pngHeader(40000, 40000), "Chief Guest Biodata")
	require.NoError(t, err)
	assert.False(t, sec.Embedded)
	assert.Contains(t, sec.Note, "too large")
	assert.Equal(t, 1, sec.Pages)
}

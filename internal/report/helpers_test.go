package report

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/Lllllllleong/eventreportflow/internal/fetch"
	"github.com/stretchr/testify/require"
)

// makePDF returns a valid PDF with the given number of pages.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "fixture page")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 80, B: uint8(y * 12), A: 255})
		}
	}
	return img
}

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func makePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

// pngHeader returns a PNG that declares width x height pixels but carries no
// image data.
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

// fakeFetcher serves canned results and records the references it was asked for.
type fakeFetcher struct {
	results map[string]fetch.Result
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{results: make(map[string]fetch.Result)}
}

func (f *fakeFetcher) serve(ref string, data []byte) {
	f.results[ref] = fetch.Result{FileID: ref, Data: data}
}

func (f *fakeFetcher) fail(ref, diagnostic string) {
	f.results[ref] = fetch.Result{FileID: ref, Diagnostic: diagnostic}
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string) fetch.Result {
	f.calls = append(f.calls, ref)
	if r, ok := f.results[ref]; ok {
		return r
	}
	return fetch.Result{Diagnostic: "not found"}
}

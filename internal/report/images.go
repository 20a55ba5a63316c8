package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxImagePixels bounds the decoded size of an uploaded image. Decoders
// allocate the full pixel buffer from the header alone.
const maxImagePixels = 40_000_000

// embeddable is an image re-packed into a form the PDF writer accepts.
type embeddable struct {
	imageType string // "JPG" or "PNG"
	data      []byte
	width     int
	height    int
}

// prepareImage fully decodes data so corrupt payloads are caught before they
// reach the PDF writer. JPEGs are embedded as-is; every other format is
// flattened to 8-bit NRGBA and re-encoded as PNG.
func prepareImage(data []byte) (*embeddable, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("image has no pixels")
	}
	if format == "jpeg" {
		return &embeddable{imageType: "JPG", data: data, width: b.Dx(), height: b.Dy()}, nil
	}

	flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, fmt.Errorf("re-encode %s image: %w", format, err)
	}
	return &embeddable{imageType: "PNG", data: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}

// fitBox scales the image into a boxW x boxH box, keeping its aspect ratio.
func (e *embeddable) fitBox(boxW, boxH float64) (w, h float64) {
	iw, ih := float64(e.width), float64(e.height)
	scale := boxW / iw
	if s := boxH / ih; s < scale {
		scale = s
	}
	return iw * scale, ih * scale
}

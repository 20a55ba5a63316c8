package report

import "bytes"

// Kind is the sniffed format of a fetched document.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var (
	pdfMagic  = []byte("%PDF-")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
)

// Classify sniffs the leading bytes of data. Filenames and declared content
// types are never consulted.
func Classify(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, jpegMagic), bytes.HasPrefix(data, pngMagic):
		return KindImage
	default:
		return KindUnknown
	}
}

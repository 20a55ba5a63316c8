package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// pdfConfig returns a fresh pdfcpu configuration with relaxed validation, so
// that PDFs written by scanners and office suites are accepted.
func pdfConfig() *model.Configuration {
	// Cloud Functions have no writable home directory for pdfcpu's config.
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// CountPages parses data as a PDF and returns its page count.
func CountPages(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, errors.New("empty document")
	}
	n, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return n, nil
}

// Optimize validates data and rewrites it with shared resources deduplicated.
func Optimize(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, pdfConfig()); err != nil {
		return nil, fmt.Errorf("optimize pdf: %w", err)
	}
	return out.Bytes(), nil
}

// Document is the append-only page sequence of the final report. Pages are
// only ever added at the end; a failed append leaves the document unchanged.
type Document struct {
	data  []byte
	pages int
}

// NewDocument starts a document from the base report.
func NewDocument(base []byte) (*Document, error) {
	n, err := CountPages(base)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("base report has no pages")
	}
	return &Document{data: base, pages: n}, nil
}

// Append concatenates every page of each part, in order, to the end of the
// document and returns the number of pages added. Either all parts are
// appended or none are.
func (d *Document) Append(parts ...[]byte) (int, error) {
	if len(parts) == 0 {
		return 0, nil
	}
	readers := make([]io.ReadSeeker, 0, len(parts)+1)
	readers = append(readers, bytes.NewReader(d.data))
	for _, p := range parts {
		readers = append(readers, bytes.NewReader(p))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, pdfConfig()); err != nil {
		return 0, fmt.Errorf("merge: %w", err)
	}
	merged := out.Bytes()
	n, err := CountPages(merged)
	if err != nil {
		return 0, fmt.Errorf("verify merged output: %w", err)
	}
	if n < d.pages {
		return 0, fmt.Errorf("merged output lost pages (%d < %d)", n, d.pages)
	}

	added := n - d.pages
	d.data = merged
	d.pages = n
	return added, nil
}

// Pages returns the current page count.
func (d *Document) Pages() int {
	return d.pages
}

// Bytes returns the current PDF byte stream.
func (d *Document) Bytes() []byte {
	return d.data
}

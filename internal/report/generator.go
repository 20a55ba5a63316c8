package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lllllllleong/eventreportflow/internal/models"
)

// ErrRenderFailed is returned when the base report cannot be produced.
// It is the only failure that aborts a generation run.
var ErrRenderFailed = errors.New("base report could not be rendered")

// minReferenceLength is the shortest reference worth fetching.
const minReferenceLength = 5

// AnnexureSlot is one supporting document merged after the base report.
type AnnexureSlot struct {
	Title string
	Ref   func(*models.DocumentRefs) string
}

// AnnexureSlots is the fixed order in which supporting documents are merged.
var AnnexureSlots = []AnnexureSlot{
	{"Attendance Report", func(d *models.DocumentRefs) string { return d.AttendanceReport }},
	{"Feedback Analysis Report", func(d *models.DocumentRefs) string { return d.FeedbackAnalysis }},
	{"Event Agenda", func(d *models.DocumentRefs) string { return d.EventAgenda }},
	{"Chief Guest Biodata", func(d *models.DocumentRefs) string { return d.ChiefGuestBiodata }},
	{"KPI Report", func(d *models.DocumentRefs) string { return d.KPIReport }},
}

// Result is the final merged report and its status log.
type Result struct {
	PDF       []byte
	Pages     int
	BasePages int
	Merged    int
	Log       StatusLog
}

// Generator assembles the final report: base pages followed by each
// supporting document in slot order.
type Generator struct {
	brand    Branding
	fetcher  Fetcher
	renderer *Renderer
	builder  *Builder

	countPages func([]byte) (int, error)
}

// NewGenerator creates a generator. fetcher may be nil, in which case every
// referenced photo and document fails to download.
func NewGenerator(brand Branding, fetcher Fetcher) *Generator {
	g := &Generator{brand: brand, fetcher: fetcher, countPages: CountPages}
	g.renderer = NewRenderer(&g.brand, fetcher)
	g.builder = NewBuilder(&g.brand)
	return g
}

// Generate builds the report for rec. A failing annexure is recorded in the
// log and contributes no pages; only a base report failure returns an error,
// in which case the returned Result still carries the log.
func (g *Generator) Generate(ctx context.Context, rec *models.EventRecord) (*Result, error) {
	res := &Result{}
	res.Log.Addf("Starting PDF generation...")

	base, err := g.renderer.Render(ctx, rec)
	if err != nil {
		res.Log.Addf("ERROR: %s", shortError(err))
		return res, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	for _, p := range base.Photos {
		if p.Embedded {
			res.Log.Addf("Photo %s: Embedded successfully", p.Title)
		} else {
			res.Log.Addf("Photo %s: FAILED - %s", p.Title, p.Diagnostic)
		}
	}

	doc, err := NewDocument(base.PDF)
	if err != nil {
		res.Log.Addf("ERROR: %s", shortError(err))
		return res, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	res.BasePages = doc.Pages()
	res.Log.Addf("Main report built: %d pages", res.BasePages)

	for _, slot := range AnnexureSlots {
		if g.mergeSlot(ctx, doc, slot.Title, slot.Ref(&rec.Documents), &res.Log) {
			res.Merged++
		}
	}

	res.PDF = doc.Bytes()
	res.Pages = doc.Pages()
	res.Log.Addf("TOTAL: %d documents merged, %d total pages", res.Merged, res.Pages)
	return res, nil
}

// mergeSlot fetches one supporting document and appends it. It reports
// whether the document was merged.
func (g *Generator) mergeSlot(ctx context.Context, doc *Document, title, ref string, log *StatusLog) bool {
	ref = strings.TrimSpace(ref)
	if models.IsBlankReference(ref) || len(ref) < minReferenceLength {
		log.Addf("%s: SKIPPED (no file)", title)
		return false
	}
	log.Addf("%s: Downloading ID=%s...", title, truncate(ref, 30))

	if g.fetcher == nil {
		log.Addf("%s: DOWNLOAD FAILED: no document fetcher configured", title)
		return false
	}
	fetched := g.fetcher.Fetch(ctx, ref)
	if !fetched.OK() {
		log.Addf("%s: DOWNLOAD FAILED: %s", title, fetched.Diagnostic)
		return false
	}
	log.Addf("%s: Downloaded %d bytes", title, len(fetched.Data))

	switch Classify(fetched.Data) {
	case KindImage:
		return g.mergeImage(doc, title, fetched.Data, log)
	case KindPDF:
		return g.mergePDF(doc, title, fetched.Data, false, log)
	default:
		log.Addf("%s: Unknown format, trying as PDF...", title)
		return g.mergePDF(doc, title, fetched.Data, true, log)
	}
}

func (g *Generator) mergePDF(doc *Document, title string, data []byte, guessed bool, log *StatusLog) bool {
	pages, err := g.countPages(data)
	if err != nil {
		if guessed {
			log.Addf("%s: PARSE ERROR - %s", title, shortError(err))
		} else {
			log.Addf("%s: PDF ERROR - %s", title, shortError(err))
		}
		return false
	}
	if pages == 0 {
		if guessed {
			log.Addf("%s: FAILED - Invalid format", title)
		} else {
			log.Addf("%s: FAILED - PDF has 0 pages", title)
		}
		return false
	}

	sep, err := g.builder.TitleAnnexure(title)
	if err != nil {
		log.Addf("%s: PDF ERROR - %s", title, shortError(err))
		return false
	}
	// The title page goes in together with the document or not at all.
	if _, err := doc.Append(sep.PDF, data); err != nil {
		log.Addf("%s: MERGE ERROR - %s", title, shortError(err))
		return false
	}
	log.Addf("%s: MERGED (%d pages)", title, pages)
	return true
}

func (g *Generator) mergeImage(doc *Document, title string, data []byte, log *StatusLog) bool {
	sec, err := g.builder.ImageAnnexure(data, title)
	if err != nil {
		log.Addf("%s: IMAGE ERROR - %s", title, shortError(err))
		return false
	}
	added, err := doc.Append(sec.PDF)
	if err != nil {
		log.Addf("%s: MERGE ERROR - %s", title, shortError(err))
		return false
	}
	if !sec.Embedded {
		log.Addf("%s: IMAGE ERROR - %s (placeholder page added)", title, sec.Note)
		return false
	}
	log.Addf("%s: MERGED as image (%d page)", title, added)
	return true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/eventreportflow/internal/fetch"
	"github.com/Lllllllleong/eventreportflow/internal/models"
)

const (
	defaultProgramName = "Event"
	notAvailable       = "N/A"
	noBriefReport      = "No report provided."

	photoBoxW = 127.0 // 5in
	photoBoxH = 101.6 // 4in
)

// Fetcher retrieves the bytes behind a stored reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) fetch.Result
}

// PhotoOutcome records whether one photo annexure got its image.
type PhotoOutcome struct {
	Title      string
	Embedded   bool
	Diagnostic string
}

// Rendered is the base report produced from an event record.
type Rendered struct {
	PDF    []byte
	Pages  int
	Photos []PhotoOutcome
}

type photoSlot struct {
	title string
	ref   func(*models.PhotoRefs) string
}

// photoSlots is the fixed order of the photo annexures.
var photoSlots = []photoSlot{
	{"Geotagged Photo 1", func(p *models.PhotoRefs) string { return p.Geotag1 }},
	{"Geotagged Photo 2", func(p *models.PhotoRefs) string { return p.Geotag2 }},
	{"Geotagged Photo 3", func(p *models.PhotoRefs) string { return p.Geotag3 }},
	{"Event Photo 1", func(p *models.PhotoRefs) string { return p.Normal1 }},
	{"Event Photo 2", func(p *models.PhotoRefs) string { return p.Normal2 }},
	{"Event Photo 3", func(p *models.PhotoRefs) string { return p.Normal3 }},
}

// Renderer lays out the base report: details, narrative, signatures and
// photo annexures.
type Renderer struct {
	brand   *Branding
	fetcher Fetcher
}

// NewRenderer creates a renderer. fetcher may be nil, in which case every
// photo page carries a placeholder.
func NewRenderer(brand *Branding, fetcher Fetcher) *Renderer {
	return &Renderer{brand: brand, fetcher: fetcher}
}

// Render produces the base report. Missing fields render as blanks or
// placeholders. One page is emitted per non-blank photo reference whether or
// not the photo can be retrieved, so the page count depends only on which
// references are set.
func (r *Renderer) Render(ctx context.Context, rec *models.EventRecord) (*Rendered, error) {
	name := rec.ProgramName
	if name == "" {
		name = defaultProgramName
	}
	c := newCanvas(r.brand, "Report on "+name)
	c.withPageNumbers()

	c.pdf.AddPage()
	c.header()
	r.details(c, rec, name)

	c.pdf.AddPage()
	c.header()
	c.sectionHeading("OBJECTIVE:")
	c.paragraph(orDefault(rec.Objective, notAvailable))
	c.pdf.Ln(6)
	c.sectionHeading("BENEFITS:")
	c.paragraph(orDefault(rec.Benefits, notAvailable))

	c.pdf.AddPage()
	c.header()
	c.sectionHeading("EVENT REPORT SUMMARY")
	for _, para := range BriefReportParagraphs(rec.BriefReport) {
		c.paragraph(para)
	}

	c.pdf.AddPage()
	c.header()
	r.signatures(c)

	photos := r.photoAnnexures(ctx, c, &rec.Photos)

	out, pages, err := c.output()
	if err != nil {
		return nil, fmt.Errorf("render base report: %w", err)
	}
	return &Rendered{PDF: out, Pages: pages, Photos: photos}, nil
}

func (r *Renderer) details(c *canvas, rec *models.EventRecord, name string) {
	pdf := c.pdf
	pdf.Ln(2)
	c.setFont("B", 16)
	pdf.MultiCell(0, 7, c.tr("Report on "+name), "", "C", false)
	pdf.Ln(4)

	const labelW = 45.7
	valueW := c.contentWidth() - labelW
	for _, row := range detailRows(rec) {
		c.keyValueRow(row[0], row[1], labelW, valueW)
	}
}

// detailRows is the label/value content of the details table, in print order.
func detailRows(rec *models.EventRecord) [][2]string {
	resourcePerson := joinNonEmpty(", ", rec.SpeakerNames, rec.SpeakerDesignation, rec.SpeakerOrganization)
	return [][2]string{
		{"ACADEMIC YEAR:", rec.AcademicYear},
		{"QUARTER:", rec.Quarter},
		{"ACTIVITY CATEGORY:", rec.ActivityLedBy},
		{"PROGRAM TYPE:", fmt.Sprintf("Level %s - %s", rec.EventLevel, rec.ProgramType)},
		{"PROGRAM NAME:", rec.ProgramName},
		{"PROGRAM THEME:", rec.ProgramTheme},
		{"PROGRAM DRIVEN BY:", rec.ProgramDrivenBy},
		{"ORGANIZING DEPARTMENTS:", rec.OrganizingDepartments},
		{"DURATION:", fmt.Sprintf("%s Hours", rec.DurationHrs)},
		{"DATE:", fmt.Sprintf("%s to %s", rec.StartDate, rec.EndDate)},
		{"PARTICIPANTS:", participants(rec)},
		{"EXPENDITURE:", "Rs. " + rec.ExpenditureAmount},
		{"MODE OF DELIVERY:", rec.ModeOfDelivery},
		{"RESOURCE PERSON:", orDefault(resourcePerson, notAvailable)},
		{"SDG GOALS:", orDefault(rec.SDGGoals, notAvailable)},
		{"PROGRAM OUTCOMES:", orDefault(rec.ProgramOutcomes, notAvailable)},
		{"SOCIAL MEDIA:", orDefault(rec.VideoURL, notAvailable)},
	}
}

func participants(rec *models.EventRecord) string {
	s := fmt.Sprintf("Students: %s | Faculty: %s", rec.StudentParticipants, rec.FacultyParticipants)
	if rec.ExternalParticipants != "" {
		s += " | External: " + rec.ExternalParticipants
	}
	return s
}

func (r *Renderer) signatures(c *canvas) {
	pdf := c.pdf
	c.sectionHeading("AUTHORIZATION")
	pdf.Ln(50.8)

	half := c.contentWidth() / 2
	y := pdf.GetY()
	pdf.SetLineWidth(0.3)
	pdf.Line(marginLeft, y, marginLeft+60, y)
	pdf.Line(marginLeft+2*half-60, y, marginLeft+2*half, y)
	pdf.Ln(1.5)

	c.setFont("B", 9)
	pdf.CellFormat(half, 5, c.tr(c.brand.Signatories[0]), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, c.tr(c.brand.Signatories[1]), "", 1, "R", false, 0, "")
}

func (r *Renderer) photoAnnexures(ctx context.Context, c *canvas, refs *models.PhotoRefs) []PhotoOutcome {
	var outcomes []PhotoOutcome
	for _, slot := range photoSlots {
		ref := slot.ref(refs)
		if models.IsBlankReference(ref) {
			continue
		}
		c.pdf.AddPage()
		c.header()
		c.sectionHeading("ANNEXURE: " + slot.title)
		c.pdf.Ln(7.6)

		outcome := PhotoOutcome{Title: slot.title}
		if img, diag := r.photo(ctx, ref); img != nil {
			x := marginLeft + (c.contentWidth()-photoBoxW)/2
			c.drawImage(img, x, c.pdf.GetY(), photoBoxW, photoBoxH)
			outcome.Embedded = true
		} else {
			outcome.Diagnostic = diag
			c.note("Photo could not be embedded")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (r *Renderer) photo(ctx context.Context, ref string) (*embeddable, string) {
	if r.fetcher == nil {
		return nil, "no document fetcher configured"
	}
	res := r.fetcher.Fetch(ctx, ref)
	if !res.OK() {
		return nil, res.Diagnostic
	}
	img, err := prepareImage(res.Data)
	if err != nil {
		return nil, shortError(err)
	}
	return img, ""
}

// BriefReportParagraphs splits the free-text report on blank lines, dropping
// empty paragraphs. An empty report yields a single placeholder paragraph.
func BriefReportParagraphs(report string) []string {
	report = strings.ReplaceAll(report, "\r\n", "\n")
	var paras []string
	for _, p := range strings.Split(report, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	if len(paras) == 0 {
		return []string{noBriefReport}
	}
	return paras
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

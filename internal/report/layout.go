package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

// Page geometry in millimetres (A4).
const (
	marginLeft   = 12.7
	marginRight  = 12.7
	marginTop    = 7.6
	marginBottom = 15.2

	lineBody  = 5.3
	lineTable = 4.6

	headerLogoSize    = 16.5
	headerLogoColumn  = 20.3
	headerTitleHeight = 18.0
	partnerLogoSize   = 11.4
	accreditationLine = 3.2
)

// documentDate is stamped into every generated PDF instead of the wall clock,
// so identical inputs produce identical bytes.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Branding is the fixed institutional template drawn at the top of every
// major section.
type Branding struct {
	Institution   string
	Subtitles     []string
	Accreditation []string
	Signatories   [2]string

	LeftLogo     *embeddable
	RightLogo    *embeddable
	PartnerLogos []*embeddable

	fonts *fontSet
}

// fontSet holds TrueType font data for text outside cp1252, such as Tamil
// names or the rupee sign.
type fontSet struct {
	regular []byte
	bold    []byte
}

const (
	coreFamily    = "Helvetica"
	unicodeFamily = "ReportSans"

	regularFontFile = "NotoSans-Regular.ttf"
	boldFontFile    = "NotoSans-Bold.ttf"
)

// DefaultBranding returns the template text with no logos.
func DefaultBranding() Branding {
	return Branding{
		Institution: "SRI RAMAKRISHNA INSTITUTE OF TECHNOLOGY",
		Subtitles:   []string{"COIMBATORE-10", "(An Autonomous Institution)"},
		Accreditation: []string{
			"Accredited by NAAC with an 'A' Grade and All eligible UG Engineering Programmes are Accredited by NBA",
			"(Approved by AICTE, New Delhi - Affiliated to Anna University, Chennai)",
			"Pachapalayam, Perur Chettipalayam, Coimbatore - 641 010. www.srit.org Phone - 0422-2605577",
		},
		Signatories: [2]string{"Event Coordinator", "IIC President"},
	}
}

// partnerLogoFiles is the left-to-right order of the logo strip.
var partnerLogoFiles = []string{
	"hive.png", "sish.png", "mic.png", "aicte.png", "iic_logo.png", "idea_lab.png", "ecell.png",
}

// LoadLogos reads logo files from dir into b. Missing or unreadable files are
// skipped; header geometry does not depend on which logos are present.
func (b *Branding) LoadLogos(dir string) {
	if dir == "" {
		return
	}
	load := func(name string) *embeddable {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil
		}
		img, err := prepareImage(data)
		if err != nil {
			slog.Warn("Skipping unusable logo.", "file", name, "error", err)
			return nil
		}
		return img
	}
	b.LeftLogo = load("snr_logo.png")
	b.RightLogo = load("srit_logo.png")
	b.PartnerLogos = b.PartnerLogos[:0]
	for _, name := range partnerLogoFiles {
		if img := load(name); img != nil {
			b.PartnerLogos = append(b.PartnerLogos, img)
		}
	}
}

// LoadFonts reads UTF-8 fonts from dir into b. Without a usable regular font
// the core Helvetica fonts are used and text is limited to cp1252.
func (b *Branding) LoadFonts(dir string) {
	b.fonts = nil
	if dir == "" {
		return
	}
	regular, err := os.ReadFile(filepath.Join(dir, regularFontFile))
	if err != nil {
		slog.Warn("No report font found; using core fonts.", "dir", dir, "error", err)
		return
	}
	bold, err := os.ReadFile(filepath.Join(dir, boldFontFile))
	if err != nil {
		bold = regular
	}
	set := &fontSet{regular: regular, bold: bold}
	if err := set.check(); err != nil {
		slog.Warn("Skipping unusable report font.", "dir", dir, "error", err)
		return
	}
	b.fonts = set
}

// UnicodeText reports whether text is rendered with UTF-8 fonts.
func (b *Branding) UnicodeText() bool {
	return b.fonts != nil
}

// check registers the fonts on a scratch document so that a bad file is
// rejected here rather than failing every render.
func (f *fontSet) check() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	f.register(pdf)
	pdf.AddPage()
	pdf.SetFont(unicodeFamily, "B", 10)
	pdf.SetFont(unicodeFamily, "", 10)
	return pdf.Error()
}

func (f *fontSet) register(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(unicodeFamily, "", f.regular)
	pdf.AddUTF8FontFromBytes(unicodeFamily, "B", f.bold)
	// No italic face is shipped; italic notes use the regular outline.
	pdf.AddUTF8FontFromBytes(unicodeFamily, "I", f.regular)
}

// canvas is one fpdf document laid out with the report template.
type canvas struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	brand  *Branding
	family string
	images map[*embeddable]string
}

func newCanvas(brand *Branding, title string) *canvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("eventreportflow", false)
	c := &canvas{pdf: pdf, brand: brand, family: coreFamily, images: make(map[*embeddable]string)}
	if brand.fonts != nil {
		brand.fonts.register(pdf)
		c.family = unicodeFamily
		c.tr = func(s string) string { return s }
	} else {
		c.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.SetTitle(title, true)
	return c
}

func (c *canvas) setFont(style string, size float64) {
	c.pdf.SetFont(c.family, style, size)
}

func (c *canvas) contentWidth() float64 {
	w, _ := c.pdf.GetPageSize()
	return w - marginLeft - marginRight
}

// withPageNumbers adds a centred "Page N" footer.
func (c *canvas) withPageNumbers() {
	c.pdf.SetFooterFunc(func() {
		c.pdf.SetY(-10.2)
		c.setFont("", 9)
		c.pdf.SetTextColor(0, 0, 0)
		c.pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", c.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// header draws the institution block: logos, name, accreditation, partner
// strip and the purple rule. It always occupies the same height.
func (c *canvas) header() {
	pdf := c.pdf
	width := c.contentWidth()
	top := pdf.GetY()

	logoY := top + (headerTitleHeight-headerLogoSize)/2
	c.drawImage(c.brand.LeftLogo, marginLeft+(headerLogoColumn-headerLogoSize)/2, logoY, headerLogoSize, headerLogoSize)
	c.drawImage(c.brand.RightLogo, marginLeft+width-headerLogoColumn+(headerLogoColumn-headerLogoSize)/2, logoY, headerLogoSize, headerLogoSize)

	centerX := marginLeft + headerLogoColumn
	centerW := width - 2*headerLogoColumn
	pdf.SetXY(centerX, top+1)
	pdf.SetTextColor(0, 0, 0)
	c.setFont("B", 14)
	pdf.CellFormat(centerW, 6, c.tr(c.brand.Institution), "", 2, "C", false, 0, "")
	pdf.SetTextColor(0x22, 0x8B, 0x22)
	c.setFont("B", 11)
	for _, s := range c.brand.Subtitles {
		pdf.CellFormat(centerW, 5, c.tr(s), "", 2, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	y := top + headerTitleHeight + 1.3
	c.setFont("", 7)
	for _, line := range c.brand.Accreditation {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(width, accreditationLine, c.tr(line), "", 0, "C", false, 0, "")
		y += accreditationLine
	}
	y += 2

	col := width / float64(len(partnerLogoFiles))
	for i, logo := range c.brand.PartnerLogos {
		x := marginLeft + float64(i)*col + (col-partnerLogoSize)/2
		c.drawImage(logo, x, y, partnerLogoSize, partnerLogoSize)
	}
	y += partnerLogoSize + 1.5

	pdf.SetFillColor(0x8B, 0x00, 0x8B)
	pdf.Rect(marginLeft, y, width, 1.1, "F")
	pdf.SetXY(marginLeft, y+1.1+2.5)
}

// sectionHeading draws a centred banner such as "OBJECTIVE:".
func (c *canvas) sectionHeading(text string) {
	pdf := c.pdf
	pdf.Ln(2)
	pdf.SetFillColor(0xD8, 0xBF, 0xD8)
	pdf.SetTextColor(0x4B, 0x00, 0x82)
	c.setFont("B", 12)
	pdf.CellFormat(0, 8, c.tr(text), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

// paragraph writes justified body text.
func (c *canvas) paragraph(text string) {
	c.setFont("", 10)
	c.pdf.MultiCell(0, lineBody, c.tr(text), "", "J", false)
	c.pdf.Ln(1.5)
}

// note writes an italic explanatory line.
func (c *canvas) note(text string) {
	c.setFont("I", 10)
	c.pdf.MultiCell(0, lineBody, c.tr(text), "", "C", false)
}

// keyValueRow draws one bordered two-column row, growing to fit wrapped text.
func (c *canvas) keyValueRow(label, value string, labelW, valueW float64) {
	pdf := c.pdf
	const pad = 1.4
	label, value = c.tr(label), c.tr(value)

	c.setFont("B", 9)
	labelLines := len(pdf.SplitLines([]byte(label), labelW))
	c.setFont("", 9)
	valueLines := len(pdf.SplitLines([]byte(value), valueW))
	lines := max(labelLines, valueLines, 1)
	rowH := float64(lines)*lineTable + 2*pad

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+rowH > pageH-marginBottom {
		pdf.AddPage()
	}
	x, y := marginLeft, pdf.GetY()
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, labelW, rowH, "D")
	pdf.Rect(x+labelW, y, valueW, rowH, "D")

	pdf.SetXY(x, y+pad)
	c.setFont("B", 9)
	pdf.MultiCell(labelW, lineTable, label, "", "L", false)
	pdf.SetXY(x+labelW, y+pad)
	c.setFont("", 9)
	pdf.MultiCell(valueW, lineTable, value, "", "L", false)
	pdf.SetXY(x, y+rowH)
}

// drawImage places img inside a w x h box at (x, y), centred and
// aspect-preserving. A nil image draws nothing.
func (c *canvas) drawImage(img *embeddable, x, y, w, h float64) {
	if img == nil {
		return
	}
	opts := fpdf.ImageOptions{ImageType: img.imageType}
	name, ok := c.images[img]
	if !ok {
		name = fmt.Sprintf("img%d", len(c.images)+1)
		c.images[img] = name
		c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.data))
	}
	dw, dh := img.fitBox(w, h)
	c.pdf.ImageOptions(name, x+(w-dw)/2, y+(h-dh)/2, dw, dh, false, opts, 0, "")
}

// output serialises the document.
func (c *canvas) output() ([]byte, int, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), c.pdf.PageCount(), nil
}

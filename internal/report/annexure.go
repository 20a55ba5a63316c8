package report

import "fmt"

const (
	annexureBoxW = 152.4 // 6in
	annexureBoxH = 177.8 // 7in
)

// Section is a small standalone PDF appended to the report as a unit.
type Section struct {
	PDF   []byte
	Pages int
	// Embedded is false when an image section carries a placeholder instead
	// of its image.
	Embedded bool
	Note     string
}

// Builder produces annexure sections that share the report template.
type Builder struct {
	brand *Branding
}

// NewBuilder creates an annexure builder.
func NewBuilder(brand *Branding) *Builder {
	return &Builder{brand: brand}
}

// TitleAnnexure builds the one-page separator placed before a PDF annexure.
func (b *Builder) TitleAnnexure(title string) (*Section, error) {
	c := newCanvas(b.brand, "Annexure: "+title)
	c.pdf.AddPage()
	c.header()
	c.pdf.Ln(38)

	c.sectionHeading("ANNEXURE")
	c.pdf.Ln(6)
	c.setFont("B", 18)
	c.pdf.MultiCell(0, 9, c.tr(title), "", "C", false)
	c.pdf.Ln(10)
	c.note(fmt.Sprintf("The %s document is attached on the following pages.", title))

	out, pages, err := c.output()
	if err != nil {
		return nil, fmt.Errorf("title annexure %q: %w", title, err)
	}
	return &Section{PDF: out, Pages: pages, Embedded: true}, nil
}

// ImageAnnexure builds a one-page section holding img under a titled banner.
// Undecodable image data yields a page with an explanatory line instead.
func (b *Builder) ImageAnnexure(img []byte, title string) (*Section, error) {
	c := newCanvas(b.brand, "Annexure: "+title)
	c.pdf.AddPage()
	c.header()
	c.sectionHeading("ANNEXURE: " + title)
	c.pdf.Ln(5)

	sec := &Section{}
	prepared, err := prepareImage(img)
	if err != nil {
		sec.Note = shortError(err)
		c.note("Image could not be embedded: " + sec.Note)
	} else {
		x := marginLeft + (c.contentWidth()-annexureBoxW)/2
		c.drawImage(prepared, x, c.pdf.GetY(), annexureBoxW, annexureBoxH)
		sec.Embedded = true
	}

	out, pages, err := c.output()
	if err != nil {
		return nil, fmt.Errorf("image annexure %q: %w", title, err)
	}
	sec.PDF, sec.Pages = out, pages
	return sec, nil
}

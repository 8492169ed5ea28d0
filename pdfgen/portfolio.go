package pdfgen

import (
	"bytes"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// portfolioSection describes one image-derived category in portfolio order.
type portfolioSection struct {
	docType   models.DocumentType
	heading   string // section header page text, without the number
	itemLabel string // per-document ordinal label
	extraNote bool   // photos carry an extra pointer line on placeholder pages
}

var portfolioSections = []portfolioSection{
	{docType: models.DocTypePassportPhotos, heading: "PASSPORT PHOTOS", itemLabel: "Passport Photo", extraNote: true},
	{docType: models.DocTypePassportBook, heading: "PASSPORT BOOK PAGES", itemLabel: "Passport Book Page"},
	{docType: models.DocTypeYellowFever, heading: "YELLOW FEVER CERTIFICATES", itemLabel: "Yellow Fever Certificate"},
}

// PageFailure records one document whose placeholder page was skipped.
type PageFailure struct {
	DocumentID uint
	Path       string
	Err        error
}

// Result reports a compiled artifact: where it was stored, how many pages it
// has, and which per-document pages were skipped.
type Result struct {
	RelativePath string
	Pages        int
	Failures     []PageFailure
}

// Compiler produces the consolidated per-client artifacts: the multi-section
// portfolio PDF and the single-page summary PDF.
type Compiler struct {
	Store storage.Store
	Brand string
	Now   func() time.Time
}

func NewCompiler(store storage.Store, brand string) *Compiler {
	return &Compiler{Store: store, Brand: brand, Now: time.Now}
}

// Compile writes the client's portfolio PDF: a cover page, then for each
// non-empty category a section header page followed by one placeholder page
// per document. Documents whose stored file is missing are skipped and
// recorded in the result; nothing per-document aborts compilation. The
// artifact is overwritten in place, never appended to.
func (c *Compiler) Compile(client *models.Client, photos, book, yellowFever []models.Document) (*Result, error) {
	pdf := newLetterPDF()
	pdf.SetCreationDate(c.Now())
	pdf.SetModificationDate(c.Now())
	result := &Result{}

	c.drawCoverPage(pdf, client, len(photos), len(book), len(yellowFever))

	sectionDocs := [][]models.Document{photos, book, yellowFever}
	sectionNum := 0
	for si, section := range portfolioSections {
		docs := sectionDocs[si]
		if len(docs) == 0 {
			continue
		}
		sectionNum++

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 18)
		textCentered(pdf, fmt.Sprintf("SECTION %d: %s", sectionNum, section.heading), PageMargin)

		for i, doc := range docs {
			if !c.Store.Exists(doc.FilePath) {
				log.Printf("pdfgen: document %d file %s missing, skipping portfolio page", doc.ID, doc.FilePath)
				result.Failures = append(result.Failures, PageFailure{
					DocumentID: doc.ID,
					Path:       doc.FilePath,
					Err:        storage.ErrMissingArtifact,
				})
				continue
			}
			c.drawDocumentPage(pdf, section, i+1, doc)
		}
	}

	result.Pages = pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode portfolio PDF for client %d: %w", client.ID, err)
	}

	relPath, err := c.Store.Save(client.ID, client.PortfolioFilename(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store portfolio PDF for client %d: %w", client.ID, err)
	}
	result.RelativePath = relPath

	log.Printf("pdfgen: Compiled portfolio for client %d: %s (%d pages, %d skipped)",
		client.ID, relPath, result.Pages, len(result.Failures))
	return result, nil
}

func (c *Compiler) drawCoverPage(pdf *fpdf.Fpdf, client *models.Client, photoCount, bookCount, yellowCount int) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	textCentered(pdf, strings.ToUpper(c.Brand), 100)
	pdf.SetFont("Helvetica", "B", 20)
	textCentered(pdf, "CLIENT DOCUMENT PORTFOLIO", 150)
	pdf.SetFont("Helvetica", "", 16)
	textCentered(pdf, client.Name, 200)
	pdf.SetFont("Helvetica", "", 14)
	textCentered(pdf, fmt.Sprintf("Passport Number: %s", client.PassportNumber), 230)

	y := 300.0
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(100, y, "Client Information:")
	y += 30

	pdf.SetFont("Helvetica", "", 12)
	info := []string{
		fmt.Sprintf("Name: %s", client.Name),
		fmt.Sprintf("Passport: %s", client.PassportNumber),
		fmt.Sprintf("NIN: %s", orNA(client.NIN)),
		fmt.Sprintf("District: %s", orNA(client.District)),
		fmt.Sprintf("Date: %s", client.CreatedAtDisplay()),
	}
	for _, line := range info {
		pdf.Text(120, y, line)
		y += 25
	}

	y += 20
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(100, y, "Document Summary:")
	y += 30

	pdf.SetFont("Helvetica", "", 12)
	// the grand total deliberately counts the cover page itself
	summary := []string{
		fmt.Sprintf("%s: %d", models.DocTypePassportPhotos.Label(), photoCount),
		fmt.Sprintf("%s: %d", models.DocTypePassportBook.Label(), bookCount),
		fmt.Sprintf("%s: %d", models.DocTypeYellowFever.Label(), yellowCount),
		fmt.Sprintf("Total Pages: %d", photoCount+bookCount+yellowCount+1),
	}
	for _, line := range summary {
		pdf.Text(120, y, line)
		y += 25
	}

	pdf.SetFont("Helvetica", "I", 10)
	textCentered(pdf, fmt.Sprintf("Generated on: %s", c.Now().Format("2006-01-02 15:04:05")), PageHeight-50)
}

func (c *Compiler) drawDocumentPage(pdf *fpdf.Fpdf, section portfolioSection, ordinal int, doc models.Document) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	textCentered(pdf, fmt.Sprintf("%s %d", section.itemLabel, ordinal), 100)
	pdf.SetFont("Helvetica", "", 14)
	textCentered(pdf, fmt.Sprintf("File: %s", path.Base(doc.FilePath)), 130)
	textCentered(pdf, fmt.Sprintf("Uploaded: %s", doc.UploadedAtDisplay()), 160)

	pdf.SetFont("Helvetica", "B", 48)
	textCentered(pdf, "PDF", PageHeight/2)

	pdf.SetFont("Helvetica", "", 12)
	textCentered(pdf, "PDF Document Included", PageHeight/2+50)
	if section.extraNote {
		textCentered(pdf, "See attached PDF file for actual image", PageHeight/2+70)
	}
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

package pdfgen

import (
	"bytes"
	"fmt"
	"log"

	"github.com/go-pdf/fpdf"

	"github.com/ssenyonga-git/docsysbackend/models"
)

// summaryOrder fixes the listing order of document-type counts on the
// summary page; the complete package leads when present.
var summaryOrder = []models.DocumentType{
	models.DocTypeCompletePDF,
	models.DocTypePassportPhotos,
	models.DocTypePassportBook,
	models.DocTypeYellowFever,
	models.DocTypeOther,
}

// Summarize writes the client's single-page summary PDF: client details plus
// the non-zero document-type counts. It is independent of the portfolio
// compiler and overwrites any previous summary.
func (c *Compiler) Summarize(client *models.Client, counts map[models.DocumentType]int64) (*Result, error) {
	pdf := newLetterPDF()
	pdf.SetCreationDate(c.Now())
	pdf.SetModificationDate(c.Now())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	textCentered(pdf, "CLIENT SUMMARY", PageMargin)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(PageMargin, 100, "Client Information:")

	pdf.SetFont("Helvetica", "", 12)
	y := 130.0
	info := []string{
		fmt.Sprintf("Name: %s", client.Name),
		fmt.Sprintf("Passport Number: %s", client.PassportNumber),
		fmt.Sprintf("NIN: %s", orNotProvided(client.NIN)),
		fmt.Sprintf("District: %s", orNotProvided(client.District)),
		fmt.Sprintf("Date Created: %s", client.CreatedAtDisplay()),
		fmt.Sprintf("Created By: %s", creatorName(client)),
	}
	for _, line := range info {
		pdf.Text(70, y, line)
		y += 25
	}

	y += 20
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(PageMargin, y, "Document Information:")
	y += 30

	pdf.SetFont("Helvetica", "", 12)
	listed := false
	for _, docType := range summaryOrder {
		if counts[docType] > 0 {
			pdf.Text(70, y, fmt.Sprintf("%s: %d", docType.Label(), counts[docType]))
			y += 25
			listed = true
		}
	}
	if !listed {
		pdf.Text(70, y, "No documents uploaded yet")
	}

	c.drawSummaryFooter(pdf)

	pages := pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode summary PDF for client %d: %w", client.ID, err)
	}

	relPath, err := c.Store.Save(client.ID, client.SummaryFilename(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store summary PDF for client %d: %w", client.ID, err)
	}

	log.Printf("pdfgen: Generated summary for client %d: %s", client.ID, relPath)
	return &Result{RelativePath: relPath, Pages: pages}, nil
}

func (c *Compiler) drawSummaryFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 10)
	y := PageHeight - 30
	pdf.Text(PageMargin, y, fmt.Sprintf("%s Management System", c.Brand))
	pdf.Text(PageWidth-200, y, fmt.Sprintf("Generated: %s", c.Now().Format("2006-01-02 15:04")))
}

func creatorName(client *models.Client) string {
	if client.CreatedBy != nil && client.CreatedBy.Username != "" {
		return client.CreatedBy.Username
	}
	return "System"
}

func orNotProvided(s *string) string {
	if s == nil || *s == "" {
		return "Not provided"
	}
	return *s
}

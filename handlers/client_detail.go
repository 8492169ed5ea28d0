package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// clientDetail is the payload shared by the staff detail view and the public
// viewer.
type clientDetail struct {
	Client         *models.Client    `json:"client"`
	PassportPhotos []models.Document `json:"passport_photos"`
	PassportBook   []models.Document `json:"passport_book"`
	YellowFever    []models.Document `json:"yellow_fever"`
	CompletePDFs   []models.Document `json:"complete_pdfs"`
	OtherDocuments []models.Document `json:"other_documents"`
	PDFFiles       []string          `json:"pdf_files"`
	HasPortfolio   bool              `json:"has_portfolio"`
	PortfolioFile  string            `json:"portfolio_file"`
}

// buildClientDetail groups a client's document records by type and lists the
// PDFs actually present in the folder. Records whose files are missing and
// files with no record are both tolerated; the listing reflects disk, the
// groups reflect the database.
func buildClientDetail(client *models.Client, docs repository.DocumentRepositoryInterface, store storage.Store) (*clientDetail, error) {
	all, err := docs.ListByClient(client.ID)
	if err != nil {
		return nil, err
	}

	detail := &clientDetail{
		Client:         client,
		PassportPhotos: []models.Document{},
		PassportBook:   []models.Document{},
		YellowFever:    []models.Document{},
		CompletePDFs:   []models.Document{},
		OtherDocuments: []models.Document{},
		PortfolioFile:  client.PortfolioFilename(),
	}
	for _, doc := range all {
		switch doc.DocumentType {
		case models.DocTypePassportPhotos:
			detail.PassportPhotos = append(detail.PassportPhotos, doc)
		case models.DocTypePassportBook:
			detail.PassportBook = append(detail.PassportBook, doc)
		case models.DocTypeYellowFever:
			detail.YellowFever = append(detail.YellowFever, doc)
		case models.DocTypeCompletePDF:
			detail.CompletePDFs = append(detail.CompletePDFs, doc)
		case models.DocTypeOther:
			detail.OtherDocuments = append(detail.OtherDocuments, doc)
		}
	}

	pdfFiles, err := store.ListPDFs(client.ID)
	if err != nil {
		return nil, err
	}
	detail.PDFFiles = pdfFiles
	detail.HasPortfolio = store.Exists(clientFileRelPath(client.ID, client.PortfolioFilename()))

	return detail, nil
}

// clientFileRelPath builds the storage-relative path of a file inside a
// client folder.
func clientFileRelPath(clientID uint, filename string) string {
	return fmt.Sprintf("%d/%s", clientID, filename)
}

// serveStoredFile serves an artifact from the store as an attachment.
func serveStoredFile(w http.ResponseWriter, r *http.Request, store storage.Store, relPath, downloadName string) {
	absPath, err := store.FullPath(relPath)
	if err != nil {
		log.Printf("Invalid artifact path %q: %v", relPath, err)
		writeError(w, http.StatusBadRequest, "Invalid file path")
		return
	}
	if !store.Exists(relPath) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, absPath)
}

// servePortfolio serves the portfolio artifact, compiling it first if absent.
// The stored artifact is a cache keyed by its deterministic path; existence
// is the only freshness check on the read path.
func servePortfolio(w http.ResponseWriter, r *http.Request, client *models.Client, store storage.Store, pipeline *intake.Processor) {
	relPath := clientFileRelPath(client.ID, client.PortfolioFilename())
	if !store.Exists(relPath) {
		if _, err := pipeline.RegeneratePortfolio(client); err != nil {
			log.Printf("Error generating portfolio for client %d: %v", client.ID, err)
			writeError(w, http.StatusInternalServerError, "Could not generate portfolio PDF")
			return
		}
	}
	serveStoredFile(w, r, store, relPath, client.PortfolioFilename())
}

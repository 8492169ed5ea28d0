package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
	"github.com/ssenyonga-git/docsysbackend/workers"
)

const maxUploadMemory = 64 << 20 // 64 MB

type ClientHandler struct {
	Clients      repository.ClientRepositoryInterface
	Docs         repository.DocumentRepositoryInterface
	Users        repository.UserRepositoryInterface
	Store        storage.Store
	Pipeline     *intake.Processor
	PortfolioGen *workers.PortfolioProcessor
}

func (ch *ClientHandler) getClientByID(w http.ResponseWriter, r *http.Request) *models.Client {
	idStr := chi.URLParam(r, "client_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id")
		return nil
	}
	client, err := ch.Clients.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Client not found")
		} else {
			log.Printf("Error fetching client %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve client")
		}
		return nil
	}
	return client
}

// validateCreator resolves an optional creating-user reference. A non-nil ID
// that matches no user row is a client error; writes the response and returns
// false on any failure.
func (ch *ClientHandler) validateCreator(w http.ResponseWriter, createdByID *uint) bool {
	if createdByID == nil {
		return true
	}
	if _, err := ch.Users.GetByID(*createdByID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusBadRequest, "created_by_id does not match a known user")
		} else {
			log.Printf("Error validating creating user %d: %v", *createdByID, err)
			writeError(w, http.StatusInternalServerError, "Failed to validate creating user")
		}
		return false
	}
	return true
}

// CreateClient registers a client and eagerly creates its document folder.
func (ch *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string  `json:"name"`
		PassportNumber string  `json:"passport_number"`
		NIN            *string `json:"nin"`
		District       *string `json:"district"`
		CreatedByID    *uint   `json:"created_by_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.PassportNumber == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name and passport_number")
		return
	}
	if !ch.validateCreator(w, req.CreatedByID) {
		return
	}

	client := &models.Client{
		Name:           req.Name,
		PassportNumber: req.PassportNumber,
		NIN:            req.NIN,
		District:       req.District,
		CreatedByID:    req.CreatedByID,
	}
	if err := ch.Clients.Create(client); err != nil {
		log.Printf("Error creating client '%s': %v", req.Name, err)
		writeError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	if _, err := ch.Store.EnsureClientDir(client.ID); err != nil {
		// the row is committed; report the storage failure to the caller
		log.Printf("Error creating folder for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Client created but folder creation failed")
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

type clientSummary struct {
	Client             models.Client    `json:"client"`
	PassportPhotos     int64            `json:"passport_photos_count"`
	PassportBook       int64            `json:"passport_book_count"`
	YellowFever        int64            `json:"yellow_fever_count"`
	TotalDocuments     int64            `json:"total_documents"`
	FirstPassportPhoto *models.Document `json:"first_passport_photo,omitempty"`
}

// ListClients returns all clients with their per-type document counts,
// newest first.
func (ch *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := ch.Clients.ListAll()
	if err != nil {
		log.Printf("Error listing clients: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	summaries := make([]clientSummary, 0, len(clients))
	for _, client := range clients {
		counts, err := ch.Docs.CountsForClient(client.ID)
		if err != nil {
			log.Printf("Error counting documents for client %d: %v", client.ID, err)
			counts = map[models.DocumentType]int64{}
		}

		summary := clientSummary{
			Client:         client,
			PassportPhotos: counts[models.DocTypePassportPhotos],
			PassportBook:   counts[models.DocTypePassportBook],
			YellowFever:    counts[models.DocTypeYellowFever],
		}
		summary.TotalDocuments = summary.PassportPhotos + summary.PassportBook + summary.YellowFever

		if summary.PassportPhotos > 0 {
			photos, err := ch.Docs.ListByClientAndType(client.ID, models.DocTypePassportPhotos)
			if err == nil && len(photos) > 0 {
				summary.FirstPassportPhoto = &photos[0]
			}
		}
		summaries = append(summaries, summary)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients":       summaries,
		"total_clients": len(summaries),
	})
}

// GetClient returns the full client detail payload.
func (ch *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}
	detail, err := buildClientDetail(client, ch.Docs, ch.Store)
	if err != nil {
		log.Printf("Error building detail for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve client documents")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteClient removes the client folder and all database rows together.
func (ch *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}

	if err := ch.Store.RemoveClientDir(client.ID); err != nil {
		log.Printf("Error removing folder for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete client files")
		return
	}
	if err := ch.Docs.DeleteByClient(client.ID); err != nil {
		log.Printf("Error deleting documents for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete client documents")
		return
	}
	if err := ch.Clients.Delete(client.ID); err != nil {
		log.Printf("Error deleting client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Client %s deleted successfully", client.Name)})
}

// UploadDocuments ingests one multipart batch across the named file buckets.
// The request must carry either a complete_pdf or individual documents, not
// both, and at least one of either.
func (ch *ClientHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	form := r.MultipartForm
	completePDFs := form.File["complete_pdf"]
	batch := intake.Batch{}
	var readErr error
	batch.PassportPhotos, readErr = readUploads(form.File["passport_photos"])
	if readErr == nil {
		batch.PassportBook, readErr = readUploads(form.File["passport_book"])
	}
	if readErr == nil {
		batch.YellowFever, readErr = readUploads(form.File["yellow_fever"])
	}
	if readErr == nil {
		batch.OtherDocuments, readErr = readUploads(form.File["other_documents"])
	}
	if readErr != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file: "+readErr.Error())
		return
	}

	hasIndividual := len(batch.PassportPhotos)+len(batch.PassportBook)+len(batch.YellowFever)+len(batch.OtherDocuments) > 0
	if len(completePDFs) > 0 && hasIndividual {
		writeError(w, http.StatusBadRequest, "Please choose either uploading a complete PDF OR individual documents, not both.")
		return
	}
	if len(completePDFs) == 0 && !hasIndividual {
		writeError(w, http.StatusBadRequest, "Please upload at least one document or a complete PDF.")
		return
	}

	if len(completePDFs) > 0 {
		files, err := readUploads(completePDFs[:1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file: "+err.Error())
			return
		}
		doc, err := ch.Pipeline.ProcessCompletePDF(client, files[0], r.FormValue("additional_notes"))
		if err != nil {
			log.Printf("Error processing complete PDF for client %d: %v", client.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to store complete PDF")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message":  "Complete PDF uploaded successfully",
			"document": doc,
		})
		return
	}

	result, err := ch.Pipeline.ProcessBatch(client, batch)
	if err != nil {
		log.Printf("Error processing upload batch for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to process uploads")
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse(result))
}

// QuickCreateClient registers a client and stores their complete PDF in one
// step, then generates the summary artifact.
func (ch *ClientHandler) QuickCreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	name := r.FormValue("name")
	passport := r.FormValue("passport_number")
	if name == "" || passport == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name and passport_number")
		return
	}

	completePDFs := r.MultipartForm.File["complete_pdf"]
	if len(completePDFs) == 0 {
		writeError(w, http.StatusBadRequest, "complete_pdf file is required")
		return
	}
	files, err := readUploads(completePDFs[:1])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file: "+err.Error())
		return
	}

	createdByID, err := parseOptionalUint(r.FormValue("created_by_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid created_by_id: "+err.Error())
		return
	}
	if !ch.validateCreator(w, createdByID) {
		return
	}

	client := &models.Client{
		Name:           name,
		PassportNumber: passport,
		NIN:            optionalFormValue(r, "nin"),
		District:       optionalFormValue(r, "district"),
		CreatedByID:    createdByID,
	}
	if err := ch.Clients.Create(client); err != nil {
		log.Printf("Error creating client '%s': %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	doc, err := ch.Pipeline.ProcessCompletePDF(client, files[0], r.FormValue("additional_notes"))
	if err != nil {
		log.Printf("Error processing complete PDF for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Client created but complete PDF storage failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"client":   client,
		"document": doc,
	})
}

// DownloadPortfolio serves the consolidated portfolio PDF, regenerating it
// first when the artifact is missing.
func (ch *ClientHandler) DownloadPortfolio(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}
	servePortfolio(w, r, client, ch.Store, ch.Pipeline)
}

// RequestPortfolioGeneration queues a background portfolio regeneration.
func (ch *ClientHandler) RequestPortfolioGeneration(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}

	if err := ch.Clients.RequestPortfolio(client.ID); err != nil {
		log.Printf("Error requesting portfolio for client %d: %v", client.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to request portfolio generation")
		return
	}

	if !ch.PortfolioGen.QueueJob(workers.PortfolioJob{ClientID: client.ID}) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "already queued"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

// DownloadSummary serves the client summary PDF, regenerating it first when
// the artifact is missing.
func (ch *ClientHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	client := ch.getClientByID(w, r)
	if client == nil {
		return
	}

	relPath := clientFileRelPath(client.ID, client.SummaryFilename())
	if !ch.Store.Exists(relPath) {
		if _, err := ch.Pipeline.RegenerateSummary(client); err != nil {
			log.Printf("Error generating summary for client %d: %v", client.ID, err)
			writeError(w, http.StatusInternalServerError, "Could not generate summary PDF")
			return
		}
	}
	serveStoredFile(w, r, ch.Store, relPath, client.SummaryFilename())
}

func uploadResponse(result *intake.BatchResult) map[string]interface{} {
	failed := make([]map[string]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, map[string]string{
			"bucket":   string(f.Bucket),
			"filename": f.Filename,
			"error":    f.Err.Error(),
		})
	}
	resp := map[string]interface{}{
		"uploaded":  len(result.Created),
		"documents": result.Created,
		"failed":    failed,
	}
	if result.Portfolio != nil {
		resp["portfolio"] = map[string]interface{}{
			"path":    result.Portfolio.RelativePath,
			"pages":   result.Portfolio.Pages,
			"skipped": len(result.Portfolio.Failures),
		}
	}
	return resp
}

func readUploads(headers []*multipart.FileHeader) ([]intake.UploadedFile, error) {
	files := make([]intake.UploadedFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", header.Filename, err)
		}
		files = append(files, intake.UploadedFile{Name: header.Filename, Data: data})
	}
	return files, nil
}

func optionalFormValue(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}

func parseOptionalUint(s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, err
	}
	u := uint(v)
	return &u, nil
}

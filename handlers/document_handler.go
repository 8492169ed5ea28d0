package handlers

import (
	"errors"
	"log"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/models"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

type DocumentHandler struct {
	Docs  repository.DocumentRepositoryInterface
	Store storage.Store
}

func (dh *DocumentHandler) getDocumentByID(w http.ResponseWriter, r *http.Request) *models.Document {
	idStr := chi.URLParam(r, "document_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document id")
		return nil
	}
	doc, err := dh.Docs.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
		} else {
			log.Printf("Error fetching document %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve document")
		}
		return nil
	}
	return doc
}

// DownloadDocument serves one stored artifact as an attachment. A record
// whose file is missing yields 404, never a pipeline error.
func (dh *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc := dh.getDocumentByID(w, r)
	if doc == nil {
		return
	}
	serveStoredFile(w, r, dh.Store, doc.FilePath, path.Base(doc.FilePath))
}

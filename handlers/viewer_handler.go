package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/intake"
	"github.com/ssenyonga-git/docsysbackend/repository"
	"github.com/ssenyonga-git/docsysbackend/storage"
)

// ViewerHandler exposes the public read-only lookup paths: no login, no
// mutation beyond lazily compiling a missing portfolio on download.
type ViewerHandler struct {
	Clients  repository.ClientRepositoryInterface
	Docs     repository.DocumentRepositoryInterface
	Store    storage.Store
	Pipeline *intake.Processor
}

// Search resolves a query against passport numbers first, then falls back to
// a contains-search over passport numbers and names. An exact passport match
// returns the client detail directly.
func (vh *ViewerHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing search query")
		return
	}

	exact, err := vh.Clients.GetByPassport(query)
	if err == nil {
		vh.respondDetail(w, exact.ID)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error searching clients by passport %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	clients, err := vh.Clients.Search(query)
	if err != nil {
		log.Printf("Error searching clients for %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	if len(clients) == 1 {
		vh.respondDetail(w, clients[0].ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients":      clients,
		"search_query": query,
	})
}

// GetByPassport resolves a client by exact passport number.
func (vh *ViewerHandler) GetByPassport(w http.ResponseWriter, r *http.Request) {
	passport := chi.URLParam(r, "passport_number")
	client, err := vh.Clients.GetByPassport(passport)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Client not found")
		} else {
			log.Printf("Error fetching client by passport %q: %v", passport, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve client")
		}
		return
	}
	vh.respondDetail(w, client.ID)
}

// GetClient returns the public detail view for a client ID.
func (vh *ViewerHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "client_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id")
		return
	}
	vh.respondDetail(w, uint(id))
}

// DownloadPortfolio serves (and if needed compiles) the portfolio publicly.
func (vh *ViewerHandler) DownloadPortfolio(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "client_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id")
		return
	}
	client, err := vh.Clients.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Client not found")
		} else {
			log.Printf("Error fetching client %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve client")
		}
		return
	}
	servePortfolio(w, r, client, vh.Store, vh.Pipeline)
}

func (vh *ViewerHandler) respondDetail(w http.ResponseWriter, clientID uint) {
	client, err := vh.Clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Client not found")
		} else {
			log.Printf("Error fetching client %d: %v", clientID, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve client")
		}
		return
	}
	detail, err := buildClientDetail(client, vh.Docs, vh.Store)
	if err != nil {
		log.Printf("Error building detail for client %d: %v", clientID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve client documents")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

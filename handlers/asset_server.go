package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// ClientFileServer creates a handler that serves stored client files from the
// storage root. It is mounted with a chi wildcard route, e.g.
//
//	r.Get("/files/*", ClientFileServer(cfg.ClientStoragePath))
func ClientFileServer(storageRoot string) http.HandlerFunc {
	cleanRoot := filepath.Clean(storageRoot)
	log.Printf("Serving client files from directory: %s", cleanRoot)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := chi.URLParam(r, "*")
		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid file path", http.StatusBadRequest)
			return
		}

		requestedPath := filepath.Join(cleanRoot, relativePath)
		cleanedPath := filepath.Clean(requestedPath)

		if !strings.HasPrefix(cleanedPath, cleanRoot) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			log.Printf("SECURITY: Attempted file access outside storage root: Request='%s', Resolved='%s', Allowed Base='%s'",
				r.URL.Path, cleanedPath, cleanRoot)
			return
		}

		if info, err := os.Stat(cleanedPath); os.IsNotExist(err) || (err == nil && info.IsDir()) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Printf("Error stating client file %s: %v", cleanedPath, err)
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, cleanedPath)
	}
}

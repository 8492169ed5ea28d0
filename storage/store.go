package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/facette/natsort"
)

// ErrMissingArtifact is returned when a stored file referenced by a document
// record is absent on disk. Readers treat it as "skip this item", never fatal.
var ErrMissingArtifact = errors.New("artifact missing from storage")

// Store defines the interface for saving, retrieving, and deleting client
// document artifacts. Folders are keyed by the immutable numeric client ID so
// that two clients sharing a name and passport number can never intermix
// files; human-readable names appear only in artifact filenames.
type Store interface {
	// ClientDir returns the absolute folder path for a client
	ClientDir(clientID uint) string
	// EnsureClientDir creates the client folder if needed and returns its absolute path
	EnsureClientDir(clientID uint) (string, error)
	// Save writes data to filename inside the client folder
	// returns the relative path used (e.g. "42/passport_book_1.pdf") and error
	Save(clientID uint, filename string, data io.Reader) (string, error)
	// Open retrieves a reader for an artifact by relative path
	Open(relativePath string) (io.ReadCloser, os.FileInfo, error)
	// Exists reports whether an artifact is present on disk
	Exists(relativePath string) bool
	// FullPath returns the absolute filesystem path for a relative artifact path
	FullPath(relativePath string) (string, error)
	// ListPDFs returns the PDF basenames in a client folder in natural order
	ListPDFs(clientID uint) ([]string, error)
	// RemoveClientDir recursively deletes a client's folder
	RemoveClientDir(clientID uint) error
}

// LocalStore implements the Store interface using the local filesystem
type LocalStore struct {
	basePath string // absolute path to CLIENT_STORAGE_PATH
}

// NewLocalStore creates a new local filesystem store
func NewLocalStore(basePath string) (*LocalStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	log.Printf("storage: Initialized LocalStore at %s", absBasePath)
	return &LocalStore{basePath: absBasePath}, nil
}

// BasePath returns the absolute storage root.
func (ls *LocalStore) BasePath() string {
	return ls.basePath
}

// ClientDir returns the absolute folder path for a client
func (ls *LocalStore) ClientDir(clientID uint) string {
	return filepath.Join(ls.basePath, strconv.FormatUint(uint64(clientID), 10))
}

// EnsureClientDir creates the client folder if it doesn't exist
func (ls *LocalStore) EnsureClientDir(clientID uint) (string, error) {
	dirPath := ls.ClientDir(clientID)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure client directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save writes data to filename inside the client folder and returns the
// relative path. A partially written file is removed on copy failure.
func (ls *LocalStore) Save(clientID uint, filename string, data io.Reader) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty for LocalStore.Save")
	}
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename '%s': must not contain path separators", filename)
	}

	targetDir, err := ls.EnsureClientDir(clientID)
	if err != nil {
		return "", err
	}

	fullSavePath := filepath.Join(targetDir, filename)

	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, data)
	if err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		log.Printf("storage: Error calculating relative path for '%s' from '%s': %v", fullSavePath, ls.basePath, err)
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}

	log.Printf("storage: Saved artifact to %s", fullSavePath)
	return filepath.ToSlash(relativePath), nil
}

// Open retrieves a reader for an artifact by relative path
func (ls *LocalStore) Open(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	fullPath, err := ls.FullPath(relativePath)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("artifact not found at '%s': %w", relativePath, ErrMissingArtifact)
		}
		return nil, nil, fmt.Errorf("failed to open artifact '%s': %w", relativePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat artifact '%s': %w", relativePath, err)
	}

	return file, info, nil
}

// Exists reports whether an artifact is present on disk
func (ls *LocalStore) Exists(relativePath string) bool {
	fullPath, err := ls.FullPath(relativePath)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// FullPath calculates the absolute path and performs security check
func (ls *LocalStore) FullPath(relativePath string) (string, error) {
	// clean the relative path first to prevent simple traversal tricks
	cleanRelativePath := filepath.Clean(relativePath)

	fullPath := filepath.Join(ls.basePath, cleanRelativePath)

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", relativePath, err)
	}

	// prefix check alone would admit sibling directories like basePath+"-old"
	if absFullPath != ls.basePath && !strings.HasPrefix(absFullPath, ls.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}

	return absFullPath, nil
}

// ListPDFs returns the PDF basenames in a client folder, naturally sorted so
// that passport_book_10.pdf follows passport_book_2.pdf. A missing folder
// yields an empty list, not an error.
func (ls *LocalStore) ListPDFs(clientID uint) ([]string, error) {
	dirPath := ls.ClientDir(clientID)
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read client directory '%s': %w", dirPath, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, entry.Name())
		}
	}
	natsort.Sort(pdfs)
	return pdfs, nil
}

// RemoveClientDir recursively deletes a client's folder. Removing a folder
// that never existed is treated as success.
func (ls *LocalStore) RemoveClientDir(clientID uint) error {
	dirPath := ls.ClientDir(clientID)
	if err := os.RemoveAll(dirPath); err != nil {
		return fmt.Errorf("failed to remove client directory '%s': %w", dirPath, err)
	}
	log.Printf("storage: Removed client directory %s", dirPath)
	return nil
}

package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/models"
)

// DocumentRepository handles database operations for Document entities
type DocumentRepository struct {
	DB *gorm.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// Create creates a new document record in the database. The document type
// must belong to the closed type set.
func (r *DocumentRepository) Create(doc *models.Document) error {
	if !doc.DocumentType.IsValid() {
		return fmt.Errorf("invalid document type %q for client ID %d", doc.DocumentType, doc.ClientID)
	}
	if doc.UploadedAt == 0 {
		doc.UploadedAt = time.Now().Unix()
	}

	err := r.DB.Create(doc).Error
	if err != nil {
		return fmt.Errorf("failed to create document %s for client ID %d: %w", doc.FilePath, doc.ClientID, err)
	}
	return nil
}

// GetByID retrieves a document by its ID
func (r *DocumentRepository) GetByID(id uint) (*models.Document, error) {
	var doc models.Document
	err := r.DB.First(&doc, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get document by ID %d: %w", id, err)
	}
	return &doc, nil
}

// ListByClient retrieves all documents for a client in upload order
func (r *DocumentRepository) ListByClient(clientID uint) ([]models.Document, error) {
	var docs []models.Document
	err := r.DB.Where("client_id = ?", clientID).Order("uploaded_at ASC, id ASC").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for client ID %d: %w", clientID, err)
	}
	return docs, nil
}

// ListByClientAndType retrieves a client's documents of one type in upload order
func (r *DocumentRepository) ListByClientAndType(clientID uint, docType models.DocumentType) ([]models.Document, error) {
	var docs []models.Document
	err := r.DB.Where("client_id = ? AND document_type = ?", clientID, docType).
		Order("uploaded_at ASC, id ASC").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents for client ID %d: %w", docType, clientID, err)
	}
	return docs, nil
}

// CountByClientAndType counts a client's documents of one type
func (r *DocumentRepository) CountByClientAndType(clientID uint, docType models.DocumentType) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Document{}).
		Where("client_id = ? AND document_type = ?", clientID, docType).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s documents for client ID %d: %w", docType, clientID, err)
	}
	return count, nil
}

// CountsForClient returns per-type document counts for a client in one query
func (r *DocumentRepository) CountsForClient(clientID uint) (map[models.DocumentType]int64, error) {
	var rows []struct {
		DocumentType models.DocumentType
		Total        int64
	}
	err := r.DB.Model(&models.Document{}).
		Select("document_type, COUNT(*) as total").
		Where("client_id = ?", clientID).
		Group("document_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count documents for client ID %d: %w", clientID, err)
	}

	counts := make(map[models.DocumentType]int64, len(rows))
	for _, row := range rows {
		counts[row.DocumentType] = row.Total
	}
	return counts, nil
}

// DeleteByClient removes all document rows belonging to a client
func (r *DocumentRepository) DeleteByClient(clientID uint) error {
	err := r.DB.Where("client_id = ?", clientID).Delete(&models.Document{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete documents for client ID %d: %w", clientID, err)
	}
	return nil
}

package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ssenyonga-git/docsysbackend/database"
	"github.com/ssenyonga-git/docsysbackend/models"
)

// ClientRepository handles database operations for Client entities
type ClientRepository struct {
	DB *gorm.DB
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// Create creates a new client record in the database
func (r *ClientRepository) Create(client *models.Client) error {
	if client.CreatedAt == 0 {
		client.CreatedAt = time.Now().Unix()
	}
	if client.PortfolioStatus == "" {
		client.PortfolioStatus = database.StatusNotRequired
	}

	err := r.DB.Create(client).Error
	if err != nil {
		return fmt.Errorf("failed to create client %s: %w", client.Name, err)
	}
	return nil
}

// GetByID retrieves a client by its ID, preloading the creating user
func (r *ClientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	err := r.DB.Preload("CreatedBy").First(&client, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get client by ID %d: %w", id, err)
	}
	return &client, nil
}

// GetByPassport retrieves a client by exact passport number (case-insensitive)
func (r *ClientRepository) GetByPassport(passportNumber string) (*models.Client, error) {
	var client models.Client
	err := r.DB.Preload("CreatedBy").
		Where("passport_number = ? COLLATE NOCASE", passportNumber).
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get client by passport %s: %w", passportNumber, err)
	}
	return &client, nil
}

// Search finds clients whose passport number or name contains the query
func (r *ClientRepository) Search(query string) ([]models.Client, error) {
	var clients []models.Client
	pattern := "%" + query + "%"
	err := r.DB.
		Where("passport_number LIKE ? COLLATE NOCASE OR name LIKE ? COLLATE NOCASE", pattern, pattern).
		Order("created_at DESC").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search clients for %q: %w", query, err)
	}
	return clients, nil
}

// ListAll retrieves all clients, newest first
func (r *ClientRepository) ListAll() ([]models.Client, error) {
	var clients []models.Client
	err := r.DB.Order("created_at DESC").Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// Delete removes a client row by its ID. This is a hard delete; document rows
// are removed by the caller via DocumentRepository.DeleteByClient together
// with the on-disk folder.
func (r *ClientRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Client{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete client ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RequestPortfolio updates client status to indicate portfolio generation is pending
func (r *ClientRepository) RequestPortfolio(clientID uint) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"portfolio_status":       database.StatusPending,
		"portfolio_requested_at": now,
		"portfolio_error":        gorm.Expr("NULL"),
	}
	result := r.DB.Model(&models.Client{}).Where("id = ?", clientID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to request portfolio for client ID %d: %w", clientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPortfolioProcessing updates client status to indicate portfolio generation is in progress
func (r *ClientRepository) MarkPortfolioProcessing(clientID uint) error {
	result := r.DB.Model(&models.Client{}).Where("id = ?", clientID).Updates(map[string]interface{}{
		"portfolio_status": database.StatusProcessing,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark portfolio processing for client ID %d: %w", clientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPortfolioResult updates a client with the outcome of a portfolio generation task
func (r *ClientRepository) SetPortfolioResult(clientID uint, portfolioPath *string, taskErr error) error {
	now := time.Now().Unix()
	status := database.StatusDone
	var errStr *string

	if taskErr != nil {
		status = database.StatusError
		s := taskErr.Error()
		errStr = &s
	}

	updates := map[string]interface{}{
		"portfolio_status": status,
		"portfolio_error":  errStr,
	}

	if status == database.StatusDone {
		updates["portfolio_path"] = portfolioPath
		updates["portfolio_generated_at"] = now
	}

	result := r.DB.Model(&models.Client{}).Where("id = ?", clientID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set portfolio result for client ID %d: %w", clientID, result.Error)
	}

	return nil
}

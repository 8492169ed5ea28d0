package repository

import (
	"github.com/ssenyonga-git/docsysbackend/models"
)

// ClientRepositoryInterface defines the methods for client data operations
type ClientRepositoryInterface interface {
	Create(client *models.Client) error
	GetByID(id uint) (*models.Client, error)
	GetByPassport(passportNumber string) (*models.Client, error)
	Search(query string) ([]models.Client, error)
	ListAll() ([]models.Client, error)
	Delete(id uint) error

	// portfolio artifact status tracking
	RequestPortfolio(clientID uint) error
	MarkPortfolioProcessing(clientID uint) error
	SetPortfolioResult(clientID uint, portfolioPath *string, taskErr error) error
}

// DocumentRepositoryInterface defines the methods for document data operations
type DocumentRepositoryInterface interface {
	Create(doc *models.Document) error
	GetByID(id uint) (*models.Document, error)
	ListByClient(clientID uint) ([]models.Document, error)
	ListByClientAndType(clientID uint, docType models.DocumentType) ([]models.Document, error)
	CountByClientAndType(clientID uint, docType models.DocumentType) (int64, error)
	CountsForClient(clientID uint) (map[models.DocumentType]int64, error)
	DeleteByClient(clientID uint) error
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

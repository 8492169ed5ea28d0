package models

import (
	"fmt"
	"strings"
	"time"
)

// Client represents a registered client in the database using GORM.
// It corresponds to the 'clients' table.
//
// Clients are hard-deleted: removing a client cascades to its documents and
// the caller is expected to remove the on-disk folder in the same operation.
type Client struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string  `gorm:"not null" json:"name"`
	PassportNumber string  `gorm:"not null;index" json:"passport_number"`
	NIN            *string `gorm:"" json:"nin,omitempty"`      // Nullable
	District       *string `gorm:"" json:"district,omitempty"` // Nullable
	CreatedByID    *uint   `gorm:"" json:"created_by_id,omitempty"`
	CreatedBy      *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt      int64   `gorm:"not null" json:"created_at"` // Unix timestamp

	// portfolio artifact tracking
	PortfolioPath        *string `gorm:"" json:"portfolio_path,omitempty"` // Nullable, relative to storage root
	PortfolioStatus      string  `gorm:"not null;default:notRequired" json:"portfolio_status"`
	PortfolioGeneratedAt *int64  `gorm:"" json:"portfolio_generated_at,omitempty"` // Nullable, Unix timestamp
	PortfolioRequestedAt *int64  `gorm:"" json:"portfolio_requested_at,omitempty"` // Nullable, Unix timestamp
	PortfolioError       *string `gorm:"" json:"portfolio_error,omitempty"`        // Nullable

	// Relationships
	Documents []Document `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Client) TableName() string {
	return "clients"
}

// SafeName returns the client name with spaces replaced by underscores, used
// as the display label in generated artifact filenames. The on-disk folder
// itself is keyed by the client ID, never by this label.
func (c *Client) SafeName() string {
	return strings.ReplaceAll(c.Name, " ", "_")
}

// PortfolioFilename returns the deterministic portfolio artifact filename.
func (c *Client) PortfolioFilename() string {
	return fmt.Sprintf("%s_Complete_Documents.pdf", c.SafeName())
}

// SummaryFilename returns the deterministic summary artifact filename.
func (c *Client) SummaryFilename() string {
	return fmt.Sprintf("%s_Summary.pdf", c.SafeName())
}

// CreatedAtDisplay formats the creation timestamp the way generated PDFs
// render it.
func (c *Client) CreatedAtDisplay() string {
	return time.Unix(c.CreatedAt, 0).Format("2006-01-02 15:04")
}

package models

import "time"

// DocumentType tags a stored document with the intake bucket it came from.
type DocumentType string

const (
	DocTypePassportPhotos DocumentType = "passport_photos"
	DocTypePassportBook   DocumentType = "passport_book"
	DocTypeYellowFever    DocumentType = "yellow_fever"
	DocTypeCompletePDF    DocumentType = "complete_pdf"
	DocTypeOther          DocumentType = "other"
)

// documentTypeLabels maps each type to its human-readable display label.
var documentTypeLabels = map[DocumentType]string{
	DocTypePassportPhotos: "Passport Photos",
	DocTypePassportBook:   "Passport Book Pages",
	DocTypeYellowFever:    "Yellow Fever Certificates",
	DocTypeCompletePDF:    "Complete PDF Package",
	DocTypeOther:          "Other Documents",
}

// Label returns the display label for a document type.
func (dt DocumentType) Label() string {
	if label, ok := documentTypeLabels[dt]; ok {
		return label
	}
	return string(dt)
}

// IsValid reports whether dt belongs to the closed document type set.
func (dt DocumentType) IsValid() bool {
	_, ok := documentTypeLabels[dt]
	return ok
}

// Document represents one normalized PDF stored for a client.
// It corresponds to the 'documents' table.
//
// FilePath is relative to the client storage root. A record whose file is
// missing on disk is tolerated by readers (skipped, never fatal), and a file
// with no record is likewise ignored; the two are reconciled only by the
// delete-client operation, which removes both together.
type Document struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID     uint         `gorm:"not null;index" json:"client_id"`
	Client       *Client      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	DocumentType DocumentType `gorm:"not null;index" json:"document_type"`
	FilePath     string       `gorm:"not null" json:"file_path"`
	Description  string       `gorm:"" json:"description,omitempty"`
	UploadedAt   int64        `gorm:"not null" json:"uploaded_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Document) TableName() string {
	return "documents"
}

// UploadedAtDisplay formats the upload timestamp the way generated PDFs
// render it.
func (d *Document) UploadedAtDisplay() string {
	return time.Unix(d.UploadedAt, 0).Format("2006-01-02 15:04")
}

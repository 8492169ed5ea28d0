package models

import "time"

// User is the staff member recorded as a client's creator. Authentication is
// handled outside this service; the record exists so generated summaries can
// name who registered a client.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

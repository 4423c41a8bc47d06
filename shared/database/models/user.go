package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a console operator. Every write to a client record carries a user
// id as the acting identity in the audit trail.
type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"not null"`
	FirstName  string    `json:"first_name" gorm:"size:100"`
	LastName   string    `json:"last_name" gorm:"size:100"`
	Status     string    `json:"status" gorm:"default:'ACTIVE'"`
	SuperAdmin bool      `json:"super_admin" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

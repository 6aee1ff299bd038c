package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant anchor. Org CRUD and billing live outside the
// core; the row exists so every scoped query has a real foreign key.
type Organization struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name string    `gorm:"type:text;not null" json:"name"`
	Slug string    `gorm:"type:text;not null;uniqueIndex" json:"slug"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Organization) TableName() string { return "organization" }

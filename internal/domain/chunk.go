package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Chunk is a bounded slice of a SourceContent's whitespace-normalized text.
// StartChar/EndChar form a half-open interval over the normalized text;
// indexes are dense from 0 per source. The whole set is deleted and
// regenerated together whenever the source text changes.
type Chunk struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	OrganizationID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	SourceContentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_content_id"`
	SourceContent   *SourceContent `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceContentID;references:ID" json:"source_content,omitempty"`

	ChunkIndex  int            `gorm:"column:chunk_index;not null" json:"chunk_index"`
	StartChar   int            `gorm:"not null" json:"start_char"`
	EndChar     int            `gorm:"not null" json:"end_char"`
	Text        string         `gorm:"type:text;not null" json:"text"`
	TextPreview string         `gorm:"type:text;not null;default:''" json:"text_preview"`
	Embedding   datatypes.JSON `gorm:"type:jsonb" json:"embedding"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Chunk) TableName() string { return "chunk" }

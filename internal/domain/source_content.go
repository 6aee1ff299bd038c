package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SourceTypeYouTube          = "youtube"
	SourceTypeManualTranscript = "manual_transcript"
	SourceTypeConversation     = "conversation"
)

const (
	IngestStatusPending  = "pending"
	IngestStatusIngested = "ingested"
	IngestStatusFailed   = "failed"
)

// ValidIngestStatus reports whether s is one of the known ingest statuses.
func ValidIngestStatus(s string) bool {
	switch s {
	case IngestStatusPending, IngestStatusIngested, IngestStatusFailed:
		return true
	default:
		return false
	}
}

// SourceContent is an ingested source document: transcript, URL-derived text,
// or synthetic context distilled from a conversation. Identity is
// (organization_id, source_type, external_id), where a NULL external_id is a
// distinct identity class from any non-NULL one. Never hard-deleted by the
// core.
type SourceContent struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	OrganizationID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization    *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	CreatedByUserID uuid.UUID     `gorm:"type:uuid;not null" json:"created_by_user_id"`

	SourceType   string         `gorm:"type:text;not null;index" json:"source_type"`
	ExternalID   *string        `gorm:"type:text" json:"external_id,omitempty"`
	Title        string         `gorm:"type:text;not null;default:''" json:"title"`
	SourceText   string         `gorm:"type:text;not null;default:''" json:"source_text"`
	IngestStatus string         `gorm:"type:text;not null;default:'pending'" json:"ingest_status"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (SourceContent) TableName() string { return "source_content" }

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Content is a draft container. The editable state lives in immutable
// ContentVersion snapshots; CurrentVersionID points at the latest one.
type Content struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`

	Title          string  `gorm:"type:text;not null;default:''" json:"title"`
	Slug           string  `gorm:"type:text;not null;index" json:"slug"`
	Status         string  `gorm:"type:text;not null;default:'draft'" json:"status"`
	ContentType    string  `gorm:"type:text;not null;default:'blog_post'" json:"content_type"`
	PrimaryKeyword string  `gorm:"type:text;not null;default:''" json:"primary_keyword"`
	TargetLocale   string  `gorm:"type:text;not null;default:''" json:"target_locale"`

	SourceContentID  *uuid.UUID     `gorm:"type:uuid;index" json:"source_content_id,omitempty"`
	SourceContent    *SourceContent `gorm:"constraint:OnDelete:SET NULL;foreignKey:SourceContentID;references:ID" json:"source_content,omitempty"`
	ConversationID   *uuid.UUID     `gorm:"type:uuid;index" json:"conversation_id,omitempty"`
	CurrentVersionID *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Content) TableName() string { return "content" }

// ContentVersion is an append-only snapshot of a generated or edited
// document. Frontmatter, Sections and SeoSnapshot hold the structured forms;
// BodyMarkdown is the assembled document and EnrichedMdx the metadata-wrapped
// rendition.
type ContentVersion struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ContentID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_content_version_seq,unique,priority:1" json:"content_id"`
	Content   *Content  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentID;references:ID" json:"content,omitempty"`
	Version   int       `gorm:"not null;index:idx_content_version_seq,unique,priority:2" json:"version"`

	Frontmatter    datatypes.JSON `gorm:"type:jsonb" json:"frontmatter"`
	Sections       datatypes.JSON `gorm:"type:jsonb" json:"sections"`
	BodyMarkdown   string         `gorm:"type:text;not null;default:''" json:"body_markdown"`
	EnrichedMdx    string         `gorm:"type:text;not null;default:''" json:"enriched_mdx"`
	SeoSnapshot    datatypes.JSON `gorm:"type:jsonb" json:"seo_snapshot"`
	StructuredData string         `gorm:"type:text;not null;default:''" json:"structured_data"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_version" }

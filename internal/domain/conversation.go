package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MessageRoleSystem    = "system"
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation is the chat session attached to a content workspace.
type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`

	Title string `gorm:"type:text;not null;default:''" json:"title"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

type ConversationMessage struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ConversationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"conversation,omitempty"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`

	Role    string         `gorm:"type:text;not null" json:"role"`
	Content string         `gorm:"type:text;not null;default:''" json:"content"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ConversationMessage) TableName() string { return "conversation_message" }

// ConversationLog records non-message activity shown in the workspace
// timeline (tool runs, generation progress, failures).
type ConversationLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ConversationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"conversation,omitempty"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`

	Type    string         `gorm:"type:text;not null" json:"type"`
	Message string         `gorm:"type:text;not null;default:''" json:"message"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ConversationLog) TableName() string { return "conversation_log" }

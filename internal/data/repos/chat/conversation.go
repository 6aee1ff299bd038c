package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, row *domain.Conversation) error
	GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.Conversation, error)
	Touch(dbc dbctx.Context, id uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *conversationRepo) Create(dbc dbctx.Context, row *domain.Conversation) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.handle(dbc).WithContext(dbc.Context()).Create(row).Error
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.Conversation, error) {
	var row domain.Conversation
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("conversation_not_found", "conversation %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *conversationRepo) Touch(dbc dbctx.Context, id uuid.UUID) error {
	return r.handle(dbc).WithContext(dbc.Context()).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

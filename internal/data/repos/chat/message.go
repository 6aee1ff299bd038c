package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, row *domain.ConversationMessage) error
	// ListByConversation returns messages oldest-first so callers can feed
	// them to the model in turn order.
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]domain.ConversationMessage, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *messageRepo) Create(dbc dbctx.Context, row *domain.ConversationMessage) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.handle(dbc).WithContext(dbc.Context()).Create(row).Error
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []domain.ConversationMessage
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

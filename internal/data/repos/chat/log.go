package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type LogRepo interface {
	Create(dbc dbctx.Context, row *domain.ConversationLog) error
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]domain.ConversationLog, error)
}

type logRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogRepo(db *gorm.DB, baseLog *logger.Logger) LogRepo {
	return &logRepo{db: db, log: baseLog.With("repo", "LogRepo")}
}

func (r *logRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *logRepo) Create(dbc dbctx.Context, row *domain.ConversationLog) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.handle(dbc).WithContext(dbc.Context()).Create(row).Error
}

func (r *logRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]domain.ConversationLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []domain.ConversationLog
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

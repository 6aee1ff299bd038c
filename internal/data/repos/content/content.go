package content

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

type ContentRepo interface {
	Create(dbc dbctx.Context, row *domain.Content) error
	GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.Content, error)
	ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]domain.Content, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *contentRepo) Create(dbc dbctx.Context, row *domain.Content) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.handle(dbc).WithContext(dbc.Context()).Create(row).Error
}

func (r *contentRepo) GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.Content, error) {
	var row domain.Content
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("content_not_found", "content %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *contentRepo) ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]domain.Content, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []domain.Content
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("organization_id = ?", organizationID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *contentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.handle(dbc).WithContext(dbc.Context()).
		Model(&domain.Content{}).
		Where("id = ?", id).
		Updates(updates).Error
}

package content

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type ContentVersionRepo interface {
	// Create assigns the next version number for the content row when
	// Version is zero, inside the caller's transaction when one is present.
	Create(dbc dbctx.Context, row *domain.ContentVersion) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ContentVersion, error)
	GetLatest(dbc dbctx.Context, contentID uuid.UUID) (*domain.ContentVersion, error)
	ListByContent(dbc dbctx.Context, contentID uuid.UUID, limit int) ([]domain.ContentVersion, error)
}

type contentVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentVersionRepo(db *gorm.DB, baseLog *logger.Logger) ContentVersionRepo {
	return &contentVersionRepo{db: db, log: baseLog.With("repo", "ContentVersionRepo")}
}

func (r *contentVersionRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *contentVersionRepo) Create(dbc dbctx.Context, row *domain.ContentVersion) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	run := func(tx *gorm.DB) error {
		if row.Version == 0 {
			var maxVersion int
			if err := tx.WithContext(dbc.Context()).
				Model(&domain.ContentVersion{}).
				Where("content_id = ?", row.ContentID).
				Select("COALESCE(MAX(version), 0)").
				Scan(&maxVersion).Error; err != nil {
				return err
			}
			row.Version = maxVersion + 1
		}
		return tx.WithContext(dbc.Context()).Create(row).Error
	}
	if dbc.Tx != nil {
		return run(dbc.Tx)
	}
	return r.db.Transaction(run)
}

func (r *contentVersionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ContentVersion, error) {
	var row domain.ContentVersion
	err := r.handle(dbc).WithContext(dbc.Context()).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("content_version_not_found", "content version %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *contentVersionRepo) GetLatest(dbc dbctx.Context, contentID uuid.UUID) (*domain.ContentVersion, error) {
	var row domain.ContentVersion
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("content_id = ?", contentID).
		Order("version DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("content_version_not_found", "content %s has no versions", contentID)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *contentVersionRepo) ListByContent(dbc dbctx.Context, contentID uuid.UUID, limit int) ([]domain.ContentVersion, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []domain.ContentVersion
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("content_id = ?", contentID).
		Order("version DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

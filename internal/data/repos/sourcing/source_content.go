package sourcing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type SourceContentUpsertInput struct {
	OrganizationID  uuid.UUID
	CreatedByUserID uuid.UUID
	SourceType      string
	ExternalID      *string
	Title           *string
	SourceText      *string
	Metadata        datatypes.JSON
	IngestStatus    string
}

type SourceContentRepo interface {
	// Upsert creates or updates the row identified by
	// (organization, source_type, external_id). NULL external_id is its own
	// identity class. Runs select-then-branch inside one transaction because
	// the backing identity is a pair of partial unique indexes that ON
	// CONFLICT cannot target portably.
	Upsert(dbc dbctx.Context, in SourceContentUpsertInput) (*domain.SourceContent, error)
	GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.SourceContent, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type sourceContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceContentRepo(db *gorm.DB, baseLog *logger.Logger) SourceContentRepo {
	return &sourceContentRepo{db: db, log: baseLog.With("repo", "SourceContentRepo")}
}

func (r *sourceContentRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *sourceContentRepo) Upsert(dbc dbctx.Context, in SourceContentUpsertInput) (*domain.SourceContent, error) {
	if in.SourceType == "" {
		return nil, apierr.Validationf("source_type_required", "sourceType is required")
	}
	if in.OrganizationID == uuid.Nil {
		return nil, apierr.Validationf("organization_required", "organizationId is required")
	}
	status := in.IngestStatus
	if !domain.ValidIngestStatus(status) {
		status = domain.IngestStatusPending
	}

	var final domain.SourceContent
	run := func(tx *gorm.DB) error {
		q := tx.WithContext(dbc.Context()).
			Where("organization_id = ? AND source_type = ?", in.OrganizationID, in.SourceType)
		if in.ExternalID != nil && *in.ExternalID != "" {
			q = q.Where("external_id = ?", *in.ExternalID)
		} else {
			q = q.Where("external_id IS NULL")
		}

		err := q.First(&final).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"ingest_status": status,
				"updated_at":    time.Now().UTC(),
			}
			if in.Title != nil {
				updates["title"] = *in.Title
			}
			if in.SourceText != nil {
				updates["source_text"] = *in.SourceText
			}
			if in.Metadata != nil {
				updates["metadata"] = in.Metadata
			}
			if err := tx.WithContext(dbc.Context()).
				Model(&domain.SourceContent{}).
				Where("id = ?", final.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			return tx.WithContext(dbc.Context()).First(&final, "id = ?", final.ID).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			final = domain.SourceContent{
				ID:              uuid.New(),
				OrganizationID:  in.OrganizationID,
				CreatedByUserID: in.CreatedByUserID,
				SourceType:      in.SourceType,
				ExternalID:      in.ExternalID,
				IngestStatus:    status,
			}
			if in.Title != nil {
				final.Title = *in.Title
			}
			if in.SourceText != nil {
				final.SourceText = *in.SourceText
			}
			if in.Metadata != nil {
				final.Metadata = in.Metadata
			}
			return tx.WithContext(dbc.Context()).Create(&final).Error

		default:
			return err
		}
	}

	var err error
	if dbc.Tx != nil {
		err = run(dbc.Tx)
	} else {
		err = r.db.Transaction(run)
	}
	if err != nil {
		return nil, err
	}
	return &final, nil
}

func (r *sourceContentRepo) GetByID(dbc dbctx.Context, organizationID, id uuid.UUID) (*domain.SourceContent, error) {
	var row domain.SourceContent
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFoundf("source_content_not_found", "source content %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *sourceContentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&domain.SourceContent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

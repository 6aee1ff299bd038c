package sourcing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type ChunkRepo interface {
	// ReplaceForSource deletes every chunk of the source and inserts the new
	// set inside one transaction, so readers never observe a partial set.
	ReplaceForSource(dbc dbctx.Context, sourceContentID uuid.UUID, chunks []domain.Chunk) error
	GetBySourceContentID(dbc dbctx.Context, sourceContentID uuid.UUID) ([]domain.Chunk, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]domain.Chunk, error)
	GetRecentBySource(dbc dbctx.Context, sourceContentID uuid.UUID, limit int) ([]domain.Chunk, error)
	GetRecentByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]domain.Chunk, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *chunkRepo) ReplaceForSource(dbc dbctx.Context, sourceContentID uuid.UUID, chunks []domain.Chunk) error {
	run := func(tx *gorm.DB) error {
		if err := tx.WithContext(dbc.Context()).
			Where("source_content_id = ?", sourceContentID).
			Delete(&domain.Chunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		for i := range chunks {
			if chunks[i].ID == uuid.Nil {
				chunks[i].ID = uuid.New()
			}
			chunks[i].SourceContentID = sourceContentID
		}
		return tx.WithContext(dbc.Context()).CreateInBatches(chunks, 100).Error
	}
	if dbc.Tx != nil {
		return run(dbc.Tx)
	}
	return r.db.Transaction(run)
}

func (r *chunkRepo) GetBySourceContentID(dbc dbctx.Context, sourceContentID uuid.UUID) ([]domain.Chunk, error) {
	var rows []domain.Chunk
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("source_content_id = ?", sourceContentID).
		Order("chunk_index ASC").
		Find(&rows).Error
	return rows, err
}

func (r *chunkRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Chunk
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *chunkRepo) GetRecentBySource(dbc dbctx.Context, sourceContentID uuid.UUID, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = 8
	}
	var rows []domain.Chunk
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("source_content_id = ?", sourceContentID).
		Order("chunk_index ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *chunkRepo) GetRecentByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = 8
	}
	var rows []domain.Chunk
	err := r.handle(dbc).WithContext(dbc.Context()).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, chunk_index ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *chunkRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Context()).
		Model(&domain.Chunk{}).
		Where("id = ?", id).
		Updates(updates).Error
}

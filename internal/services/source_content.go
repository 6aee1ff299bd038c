package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/modules/generation"
	"github.com/yungbote/draftdeck-backend/internal/modules/media"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// IngestInput is one source-content ingestion request. ExternalID is set
// for imported sources (e.g. a video id) and nil for manual transcripts.
type IngestInput struct {
	OrganizationID  uuid.UUID
	CreatedByUserID uuid.UUID
	SourceType      string
	ExternalID      *string
	Title           string
	SourceText      string
	Metadata        datatypes.JSON
	ChunkSize       int
	ChunkOverlap    int

	// VideoURL plus ScreencapTimestamps request best-effort frame capture
	// for video-backed sources. Capture failures never fail the ingest.
	VideoURL            string
	ScreencapTimestamps []float64
}

// SourceContentService ingests raw material: upserts the source row, then
// rebuilds its chunk set.
type SourceContentService struct {
	sources    sourcing.SourceContentRepo
	chunkSvc   *generation.ChunkService
	screencaps *media.ScreencapService
	log        *logger.Logger
}

// NewSourceContentService builds the ingestion service. screencaps may be
// nil when object storage is not configured.
func NewSourceContentService(sources sourcing.SourceContentRepo, chunkSvc *generation.ChunkService, screencaps *media.ScreencapService, log *logger.Logger) *SourceContentService {
	return &SourceContentService{
		sources:    sources,
		chunkSvc:   chunkSvc,
		screencaps: screencaps,
		log:        log.With("service", "SourceContentService"),
	}
}

// Ingest upserts the source under its (org, type, externalId) identity and
// regenerates chunks from the new text. A failed chunking pass marks the
// source failed rather than leaving it silently half-ingested.
func (s *SourceContentService) Ingest(ctx context.Context, in IngestInput) (*domain.SourceContent, []domain.Chunk, error) {
	if strings.TrimSpace(in.SourceText) == "" {
		return nil, nil, apierr.Validationf("source_text_required", "sourceText is required")
	}
	if in.SourceType == "" {
		in.SourceType = domain.SourceTypeManualTranscript
	}

	src, err := s.sources.Upsert(dbctx.New(ctx), sourcing.SourceContentUpsertInput{
		OrganizationID:  in.OrganizationID,
		CreatedByUserID: in.CreatedByUserID,
		SourceType:      in.SourceType,
		ExternalID:      in.ExternalID,
		Title:           &in.Title,
		SourceText:      &in.SourceText,
		Metadata:        in.Metadata,
		IngestStatus:    domain.IngestStatusPending,
	})
	if err != nil {
		return nil, nil, err
	}

	chunks, err := s.chunkSvc.RegenerateForSource(ctx, src, in.ChunkSize, in.ChunkOverlap)
	if err != nil {
		_ = s.sources.UpdateFields(dbctx.New(ctx), src.ID, map[string]interface{}{
			"ingest_status": domain.IngestStatusFailed,
		})
		return nil, nil, err
	}

	if err := s.sources.UpdateFields(dbctx.New(ctx), src.ID, map[string]interface{}{
		"ingest_status": domain.IngestStatusIngested,
	}); err != nil {
		return nil, nil, err
	}
	src.IngestStatus = domain.IngestStatusIngested

	s.captureScreencaps(ctx, src, in)

	s.log.Info("source ingested",
		"source_content_id", src.ID.String(),
		"source_type", in.SourceType,
		"chunks", len(chunks),
	)
	return src, chunks, nil
}

// captureScreencaps decorates a video-backed source with extracted frames,
// recorded under metadata.screencaps. Best-effort: any failure is logged
// and the source stays ingested.
func (s *SourceContentService) captureScreencaps(ctx context.Context, src *domain.SourceContent, in IngestInput) {
	if s.screencaps == nil || in.VideoURL == "" || len(in.ScreencapTimestamps) == 0 {
		return
	}

	keyPrefix := "screencaps/" + src.ID.String()
	shots, err := s.screencaps.CaptureFrames(ctx, in.VideoURL, in.ScreencapTimestamps, keyPrefix)
	if err != nil {
		s.log.Warn("screencap capture failed", "source_content_id", src.ID.String(), "error", err.Error())
		return
	}
	if len(shots) == 0 {
		return
	}

	meta := map[string]any{}
	if len(src.Metadata) > 0 {
		_ = json.Unmarshal(src.Metadata, &meta)
	}
	meta["screencaps"] = shots
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := s.sources.UpdateFields(dbctx.New(ctx), src.ID, map[string]interface{}{
		"metadata": datatypes.JSON(raw),
	}); err != nil {
		s.log.Warn("screencap metadata update failed", "source_content_id", src.ID.String(), "error", err.Error())
		return
	}
	src.Metadata = datatypes.JSON(raw)
}

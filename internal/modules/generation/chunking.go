package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
	"github.com/yungbote/draftdeck-backend/internal/platform/vectorize"
)

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200

	minChunkSize   = 200
	previewMaxLen  = 200
	embedBatchSize = 64
)

// TextChunk is an in-memory chunk before persistence. Offsets index into
// the normalized (whitespace-collapsed) text, not the raw input.
type TextChunk struct {
	Index     int
	StartChar int
	EndChar   int
	Text      string
}

// CreateTextChunks splits text into overlapping windows. All runs of
// whitespace are collapsed to single spaces first, so chunk boundaries are
// stable across formatting-only edits of the input. The effective window
// size never drops below 200 characters and overlap is capped at half the
// window, which guarantees forward progress.
func CreateTextChunks(text string, chunkSize, chunkOverlap int) ([]TextChunk, error) {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil, apierr.Validationf("empty_source_text", "source text is empty after normalization")
	}

	size := chunkSize
	if size < minChunkSize {
		size = minChunkSize
	}
	overlap := chunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if max := size / 2; overlap > max {
		overlap = max
	}

	var out []TextChunk
	start := 0
	for start < len(normalized) {
		end := start + size
		if end > len(normalized) {
			end = len(normalized)
		}
		segment := strings.TrimSpace(normalized[start:end])
		if segment != "" {
			out = append(out, TextChunk{
				Index:     len(out),
				StartChar: start,
				EndChar:   end,
				Text:      segment,
			})
		}
		if end >= len(normalized) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	if len(out) == 0 {
		return nil, apierr.Validationf("empty_source_text", "source text yielded no chunks")
	}
	return out, nil
}

// ChunkService turns source text into persisted chunk rows and mirrors them
// into the vector index when one is configured.
type ChunkService struct {
	chunks sourcing.ChunkRepo
	ai     openai.Client
	// nil when no vector index is configured; chunking still persists rows.
	vectors vectorize.VectorStore
	log     *logger.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewChunkService(chunks sourcing.ChunkRepo, ai openai.Client, vectors vectorize.VectorStore, log *logger.Logger) *ChunkService {
	return &ChunkService{
		chunks:  chunks,
		ai:      ai,
		vectors: vectors,
		log:     log.With("service", "ChunkService"),
		locks:   map[uuid.UUID]*sync.Mutex{},
	}
}

func (s *ChunkService) sourceLock(sourceContentID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sourceContentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sourceContentID] = l
	}
	return l
}

// RegenerateForSource rebuilds the chunk set for a source. Concurrent calls
// for the same source are serialized so the delete+insert never interleaves.
func (s *ChunkService) RegenerateForSource(ctx context.Context, src *domain.SourceContent, chunkSize, chunkOverlap int) ([]domain.Chunk, error) {
	lock := s.sourceLock(src.ID)
	lock.Lock()
	defer lock.Unlock()

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}

	parts, err := CreateTextChunks(src.SourceText, chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.Chunk, 0, len(parts))
	for _, p := range parts {
		preview := p.Text
		if len(preview) > previewMaxLen {
			preview = preview[:previewMaxLen]
		}
		rows = append(rows, domain.Chunk{
			ID:              uuid.New(),
			OrganizationID:  src.OrganizationID,
			SourceContentID: src.ID,
			ChunkIndex:      p.Index,
			StartChar:       p.StartChar,
			EndChar:         p.EndChar,
			Text:            p.Text,
			TextPreview:     preview,
			Metadata:        datatypes.JSON([]byte("{}")),
		})
	}

	priorCount := 0
	if prior, err := s.chunks.GetBySourceContentID(dbctx.New(ctx), src.ID); err == nil {
		priorCount = len(prior)
	}

	if s.vectors != nil && len(rows) > 0 {
		if err := s.embedAndIndex(ctx, src, rows); err != nil {
			// Retrieval degrades to the non-vector path; rows still persist.
			s.log.Warn("vector indexing failed, continuing without embeddings",
				"source_content_id", src.ID.String(), "error", err.Error())
		}
	}

	if err := s.chunks.ReplaceForSource(dbctx.New(ctx), src.ID, rows); err != nil {
		return nil, fmt.Errorf("replace chunks: %w", err)
	}

	// A shrinking chunk set leaves vectors behind under sourceID:index ids
	// past the new count; they point at deleted rows and burn topK slots.
	if s.vectors != nil && priorCount > len(rows) {
		stale := make([]string, 0, priorCount-len(rows))
		for i := len(rows); i < priorCount; i++ {
			stale = append(stale, fmt.Sprintf("%s:%d", src.ID, i))
		}
		if err := s.vectors.DeleteIDs(ctx, src.OrganizationID.String(), stale); err != nil {
			s.log.Warn("stale vector cleanup failed",
				"source_content_id", src.ID.String(), "error", err.Error())
		}
	}
	s.log.Info("regenerated chunks",
		"source_content_id", src.ID.String(), "count", len(rows))
	return rows, nil
}

func (s *ChunkService) embedAndIndex(ctx context.Context, src *domain.SourceContent, rows []domain.Chunk) error {
	for batchStart := 0; batchStart < len(rows); batchStart += embedBatchSize {
		batchEnd := batchStart + embedBatchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}
		batch := rows[batchStart:batchEnd]

		inputs := make([]string, len(batch))
		for i, c := range batch {
			inputs[i] = c.Text
		}
		embeddings, err := s.ai.Embed(ctx, inputs)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch: got %d embeddings for %d chunks", len(embeddings), len(batch))
		}

		vecs := make([]vectorize.Vector, len(batch))
		for i := range batch {
			raw, err := json.Marshal(embeddings[i])
			if err != nil {
				return err
			}
			batch[i].Embedding = datatypes.JSON(raw)
			vecs[i] = vectorize.Vector{
				ID:     fmt.Sprintf("%s:%d", src.ID, batch[i].ChunkIndex),
				Values: embeddings[i],
				Metadata: map[string]interface{}{
					"chunk_id":          batch[i].ID.String(),
					"source_content_id": src.ID.String(),
					"chunk_index":       batch[i].ChunkIndex,
				},
			}
		}
		if err := s.vectors.Upsert(ctx, src.OrganizationID.String(), vecs); err != nil {
			return fmt.Errorf("vector upsert: %w", err)
		}
	}
	return nil
}

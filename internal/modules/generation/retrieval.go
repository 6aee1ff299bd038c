package generation

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
	"github.com/yungbote/draftdeck-backend/internal/platform/vectorize"
)

const defaultRetrievalTopK = 8

// Retriever fetches the chunks most relevant to a query. The vector path is
// best-effort: any failure there falls back to the first chunks of the
// source in index order, so drafting always has material to work with.
type Retriever struct {
	chunks  sourcing.ChunkRepo
	ai      openai.Client
	vectors vectorize.VectorStore
	log     *logger.Logger
}

func NewRetriever(chunks sourcing.ChunkRepo, ai openai.Client, vectors vectorize.VectorStore, log *logger.Logger) *Retriever {
	return &Retriever{
		chunks:  chunks,
		ai:      ai,
		vectors: vectors,
		log:     log.With("service", "Retriever"),
	}
}

// RelevantChunks returns the topK chunks for the query. sourceContentID may
// be uuid.Nil to search across the whole organization.
func (r *Retriever) RelevantChunks(ctx context.Context, organizationID, sourceContentID uuid.UUID, query string, topK int) ([]domain.Chunk, error) {
	if topK <= 0 {
		topK = defaultRetrievalTopK
	}

	if r.vectors != nil && strings.TrimSpace(query) != "" {
		rows, err := r.vectorPath(ctx, organizationID, sourceContentID, query, topK)
		if err != nil {
			r.log.Warn("vector retrieval failed, falling back to chunk order",
				"source_content_id", sourceContentID.String(), "error", err.Error())
		} else if len(rows) > 0 {
			return rows, nil
		}
	}

	if sourceContentID == uuid.Nil {
		return r.chunks.GetRecentByOrganization(dbctx.New(ctx), organizationID, topK)
	}
	return r.chunks.GetRecentBySource(dbctx.New(ctx), sourceContentID, topK)
}

func (r *Retriever) vectorPath(ctx context.Context, organizationID, sourceContentID uuid.UUID, query string, topK int) ([]domain.Chunk, error) {
	embeds, err := r.ai.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeds) == 0 {
		return nil, nil
	}

	var filter map[string]any
	if sourceContentID != uuid.Nil {
		filter = map[string]any{"source_content_id": sourceContentID.String()}
	}
	matches, err := r.vectors.QueryMatches(ctx, organizationID.String(), embeds[0], topK, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// Resolve matches back to rows, preserving ranking. Upserted vectors
	// carry the row id in metadata; fall back to parsing the
	// "<sourceContentID>:<chunkIndex>" id shape for older entries.
	ranked := make([]uuid.UUID, 0, len(matches))
	seen := make(map[uuid.UUID]struct{}, len(matches))
	var bySourceIndex []int
	for _, m := range matches {
		if raw, ok := m.Metadata["chunk_id"].(string); ok {
			if id, err := uuid.Parse(raw); err == nil {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					ranked = append(ranked, id)
				}
				continue
			}
		}
		if sourceContentID != uuid.Nil {
			if idx, ok := parseVectorID(m.ID, sourceContentID); ok {
				bySourceIndex = append(bySourceIndex, idx)
			}
		}
	}

	out := make([]domain.Chunk, 0, topK)
	if len(ranked) > 0 {
		rows, err := r.chunks.GetByIDs(dbctx.New(ctx), ranked)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]domain.Chunk, len(rows))
		for _, c := range rows {
			byID[c.ID] = c
		}
		for _, id := range ranked {
			if c, ok := byID[id]; ok {
				out = append(out, c)
			}
		}
	}
	if len(bySourceIndex) > 0 {
		all, err := r.chunks.GetBySourceContentID(dbctx.New(ctx), sourceContentID)
		if err != nil {
			return nil, err
		}
		byIndex := make(map[int]domain.Chunk, len(all))
		for _, c := range all {
			byIndex[c.ChunkIndex] = c
		}
		for _, idx := range bySourceIndex {
			if c, ok := byIndex[idx]; ok {
				if _, dup := seen[c.ID]; !dup {
					seen[c.ID] = struct{}{}
					out = append(out, c)
				}
			}
		}
	}
	return out, nil
}

func parseVectorID(id string, sourceContentID uuid.UUID) (int, bool) {
	prefix := sourceContentID.String() + ":"
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	idx, err := strconv.Atoi(id[len(prefix):])
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

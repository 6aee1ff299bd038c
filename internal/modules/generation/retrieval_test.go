package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/vectorize"
)

type fakeChunkRepo struct {
	bySource map[uuid.UUID][]domain.Chunk
}

func (f *fakeChunkRepo) ReplaceForSource(_ dbctx.Context, sourceContentID uuid.UUID, chunks []domain.Chunk) error {
	if f.bySource == nil {
		f.bySource = map[uuid.UUID][]domain.Chunk{}
	}
	f.bySource[sourceContentID] = chunks
	return nil
}

func (f *fakeChunkRepo) GetBySourceContentID(_ dbctx.Context, sourceContentID uuid.UUID) ([]domain.Chunk, error) {
	return f.bySource[sourceContentID], nil
}

func (f *fakeChunkRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]domain.Chunk, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Chunk
	for _, chunks := range f.bySource {
		for _, c := range chunks {
			if want[c.ID] {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) GetRecentBySource(_ dbctx.Context, sourceContentID uuid.UUID, limit int) ([]domain.Chunk, error) {
	rows := f.bySource[sourceContentID]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeChunkRepo) GetRecentByOrganization(_ dbctx.Context, organizationID uuid.UUID, limit int) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for _, chunks := range f.bySource {
		for _, c := range chunks {
			if c.OrganizationID == organizationID && len(out) < limit {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) UpdateFields(dbctx.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}

type fakeVectorStore struct {
	matches  []vectorize.VectorMatch
	err      error
	upserted []vectorize.Vector
	deleted  []string
}

func (f *fakeVectorStore) Upsert(_ context.Context, _ string, vectors []vectorize.Vector) error {
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeVectorStore) QueryMatches(context.Context, string, []float32, int, map[string]any) ([]vectorize.VectorMatch, error) {
	return f.matches, f.err
}

func (f *fakeVectorStore) DeleteIDs(_ context.Context, _ string, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func seedChunks(orgID, sourceID uuid.UUID, n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{
			ID:              uuid.New(),
			OrganizationID:  orgID,
			SourceContentID: sourceID,
			ChunkIndex:      i,
			Text:            fmt.Sprintf("chunk %d", i),
		}
	}
	return out
}

func TestRetrieverFallsBackWithoutVectorStore(t *testing.T) {
	orgID, sourceID := uuid.New(), uuid.New()
	repo := &fakeChunkRepo{bySource: map[uuid.UUID][]domain.Chunk{
		sourceID: seedChunks(orgID, sourceID, 5),
	}}
	r := NewRetriever(repo, &fakeClient{}, nil, testLogger(t))

	rows, err := r.RelevantChunks(context.Background(), orgID, sourceID, "anything", 3)
	if err != nil {
		t.Fatalf("RelevantChunks: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 from the fallback", len(rows))
	}
	for i, c := range rows {
		if c.ChunkIndex != i {
			t.Errorf("fallback row %d has index %d, want chunk order", i, c.ChunkIndex)
		}
	}
}

func TestRetrieverVectorPathPreservesRanking(t *testing.T) {
	orgID, sourceID := uuid.New(), uuid.New()
	chunks := seedChunks(orgID, sourceID, 5)
	repo := &fakeChunkRepo{bySource: map[uuid.UUID][]domain.Chunk{sourceID: chunks}}

	store := &fakeVectorStore{matches: []vectorize.VectorMatch{
		{ID: "x", Score: 0.9, Metadata: map[string]any{"chunk_id": chunks[3].ID.String()}},
		{ID: "y", Score: 0.7, Metadata: map[string]any{"chunk_id": chunks[0].ID.String()}},
	}}
	fake := &fakeClient{embedFn: func(inputs []string) ([][]float32, error) {
		return [][]float32{{0.1, 0.2}}, nil
	}}
	r := NewRetriever(repo, fake, store, testLogger(t))

	rows, err := r.RelevantChunks(context.Background(), orgID, sourceID, "baking", 2)
	if err != nil {
		t.Fatalf("RelevantChunks: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != chunks[3].ID || rows[1].ID != chunks[0].ID {
		t.Errorf("ranking not preserved: got indices %d,%d", rows[0].ChunkIndex, rows[1].ChunkIndex)
	}
}

func TestRetrieverVectorFailureDegradesToFallback(t *testing.T) {
	orgID, sourceID := uuid.New(), uuid.New()
	repo := &fakeChunkRepo{bySource: map[uuid.UUID][]domain.Chunk{
		sourceID: seedChunks(orgID, sourceID, 2),
	}}
	store := &fakeVectorStore{err: errors.New("index unavailable")}
	fake := &fakeClient{embedFn: func(inputs []string) ([][]float32, error) {
		return [][]float32{{0.1}}, nil
	}}
	r := NewRetriever(repo, fake, store, testLogger(t))

	rows, err := r.RelevantChunks(context.Background(), orgID, sourceID, "baking", 5)
	if err != nil {
		t.Fatalf("vector failure must not surface: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want the fallback set", len(rows))
	}
}

func TestRetrieverResolvesLegacyVectorIDs(t *testing.T) {
	orgID, sourceID := uuid.New(), uuid.New()
	chunks := seedChunks(orgID, sourceID, 4)
	repo := &fakeChunkRepo{bySource: map[uuid.UUID][]domain.Chunk{sourceID: chunks}}

	store := &fakeVectorStore{matches: []vectorize.VectorMatch{
		{ID: fmt.Sprintf("%s:2", sourceID), Score: 0.8},
		{ID: "unrelated:junk", Score: 0.5},
	}}
	fake := &fakeClient{embedFn: func(inputs []string) ([][]float32, error) {
		return [][]float32{{0.1}}, nil
	}}
	r := NewRetriever(repo, fake, store, testLogger(t))

	rows, err := r.RelevantChunks(context.Background(), orgID, sourceID, "baking", 3)
	if err != nil {
		t.Fatalf("RelevantChunks: %v", err)
	}
	if len(rows) != 1 || rows[0].ChunkIndex != 2 {
		t.Fatalf("legacy id not resolved: %+v", rows)
	}
}

package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/draftdeck-backend/internal/domain"
)

func TestRegenerateForSourcePersistsChunks(t *testing.T) {
	repo := &fakeChunkRepo{}
	svc := NewChunkService(repo, &fakeClient{}, nil, testLogger(t))

	src := &domain.SourceContent{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		SourceText:     strings.Repeat("flour water salt yeast ", 60),
	}
	rows, err := svc.RegenerateForSource(context.Background(), src, 300, 50)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("got %d chunks, want several", len(rows))
	}

	persisted := repo.bySource[src.ID]
	if len(persisted) != len(rows) {
		t.Fatalf("persisted %d chunks, returned %d", len(persisted), len(rows))
	}
	for i, c := range persisted {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d, want dense order", i, c.ChunkIndex)
		}
		if c.OrganizationID != src.OrganizationID || c.SourceContentID != src.ID {
			t.Errorf("chunk %d not bound to its source: %+v", i, c)
		}
		if len(c.TextPreview) > previewMaxLen {
			t.Errorf("chunk %d preview is %d chars, want <= %d", i, len(c.TextPreview), previewMaxLen)
		}
		if !strings.HasPrefix(c.Text, c.TextPreview) {
			t.Errorf("chunk %d preview is not a prefix of its text", i)
		}
	}
}

func TestRegenerateForSourcePrunesStaleVectors(t *testing.T) {
	orgID, sourceID := uuid.New(), uuid.New()
	repo := &fakeChunkRepo{bySource: map[uuid.UUID][]domain.Chunk{
		sourceID: seedChunks(orgID, sourceID, 6),
	}}
	store := &fakeVectorStore{}
	fake := &fakeClient{embedFn: func(inputs []string) ([][]float32, error) {
		out := make([][]float32, len(inputs))
		for i := range out {
			out[i] = []float32{0.1, 0.2}
		}
		return out, nil
	}}
	svc := NewChunkService(repo, fake, store, testLogger(t))

	src := &domain.SourceContent{
		ID:             sourceID,
		OrganizationID: orgID,
		SourceText:     "flour water salt yeast",
	}
	rows, err := svc.RegenerateForSource(context.Background(), src, 0, 0)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d chunks, want 1 for a short text", len(rows))
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserted %d vectors, want 1", len(store.upserted))
	}

	if len(store.deleted) != 5 {
		t.Fatalf("deleted %d vector ids, want the 5 surplus ones", len(store.deleted))
	}
	for i, id := range store.deleted {
		want := fmt.Sprintf("%s:%d", sourceID, i+1)
		if id != want {
			t.Errorf("deleted[%d] = %q, want %q", i, id, want)
		}
	}
}

func TestRegenerateForSourceEmptyTextFails(t *testing.T) {
	repo := &fakeChunkRepo{}
	svc := NewChunkService(repo, &fakeClient{}, nil, testLogger(t))

	src := &domain.SourceContent{ID: uuid.New(), OrganizationID: uuid.New(), SourceText: "   "}
	if _, err := svc.RegenerateForSource(context.Background(), src, 0, 0); err == nil {
		t.Fatal("empty source text should fail validation")
	}
	if len(repo.bySource) != 0 {
		t.Error("nothing should persist for invalid input")
	}
}

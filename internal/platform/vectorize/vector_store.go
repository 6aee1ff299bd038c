package vectorize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// VectorStore is the org-scoped view over the external vector index used by
// chunk indexing and retrieval. A nil store means vector search is not
// configured; callers treat that as a capability check, not an error.
type VectorStore interface {
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	// QueryMatches returns IDs with similarity scores, best first.
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error)
	DeleteIDs(ctx context.Context, namespace string, ids []string) error
}

type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type vectorStore struct {
	log       *logger.Logger
	vc        Client
	indexName string
	indexHost string
	nsPrefix  string
}

func NewVectorStore(log *logger.Logger, vc Client) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if vc == nil {
		return nil, fmt.Errorf("vector index client required")
	}

	indexName := strings.TrimSpace(os.Getenv("VECTOR_INDEX_NAME"))
	if indexName == "" {
		return nil, fmt.Errorf("missing VECTOR_INDEX_NAME")
	}

	host := strings.TrimSpace(os.Getenv("VECTOR_INDEX_HOST"))
	nsPrefix := strings.TrimSpace(os.Getenv("VECTOR_NAMESPACE_PREFIX"))
	if nsPrefix == "" {
		nsPrefix = "dd"
	}

	// If host missing, bootstrap via describe_index (fine for local/dev).
	if host == "" {
		desc, err := vc.DescribeIndex(context.Background(), indexName)
		if err != nil {
			return nil, fmt.Errorf("vector index describe failed: %w", err)
		}
		host = strings.TrimSpace(desc.Host)
		if host == "" {
			return nil, fmt.Errorf("vector index describe returned empty host")
		}
		log.Warn("VECTOR_INDEX_HOST not set; resolved via describe_index (avoid this in production)",
			"index_name", indexName,
			"index_host", host,
		)
	}

	return &vectorStore{
		log:       log.With("service", "VectorStore"),
		vc:        vc,
		indexName: indexName,
		indexHost: host,
		nsPrefix:  nsPrefix,
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if s == nil || s.vc == nil {
		return nil
	}
	_, err := s.vc.UpsertVectors(ctx, s.indexHost, UpsertRequest{
		Namespace: s.qualifyNamespace(namespace),
		Vectors:   vectors,
	})
	return err
}

func (s *vectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error) {
	if s == nil || s.vc == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	resp, err := s.vc.Query(ctx, s.indexHost, QueryRequest{
		Namespace:       s.qualifyNamespace(namespace),
		Vector:          q,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	if s == nil || s.vc == nil || len(ids) == 0 {
		return nil
	}
	return s.vc.DeleteVectors(ctx, s.indexHost, DeleteRequest{
		Namespace: s.qualifyNamespace(namespace),
		IDs:       ids,
	})
}

func (s *vectorStore) qualifyNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return s.nsPrefix
	}
	return s.nsPrefix + ":" + ns
}

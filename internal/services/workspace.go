package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	chatrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/chat"
	contentrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/content"
	"github.com/yungbote/draftdeck-backend/internal/data/repos/sourcing"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/modules/generation"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// WorkspacePayload is everything the editor needs to render one content
// item: current version, source, chunks, and optionally the chat history.
type WorkspacePayload struct {
	Content  *domain.Content              `json:"content"`
	Version  *domain.ContentVersion       `json:"version,omitempty"`
	Sections []generation.Section         `json:"sections,omitempty"`
	Source   *domain.SourceContent        `json:"source,omitempty"`
	Chunks   []domain.Chunk               `json:"chunks,omitempty"`
	Messages []domain.ConversationMessage `json:"messages,omitempty"`
	Logs     []domain.ConversationLog     `json:"logs,omitempty"`
}

// WorkspaceService assembles workspace payloads from the stores.
type WorkspaceService struct {
	contents contentrepo.ContentRepo
	versions contentrepo.ContentVersionRepo
	sources  sourcing.SourceContentRepo
	chunks   sourcing.ChunkRepo
	messages chatrepo.MessageRepo
	logs     chatrepo.LogRepo
	log      *logger.Logger
}

func NewWorkspaceService(
	contents contentrepo.ContentRepo,
	versions contentrepo.ContentVersionRepo,
	sources sourcing.SourceContentRepo,
	chunks sourcing.ChunkRepo,
	messages chatrepo.MessageRepo,
	logs chatrepo.LogRepo,
	log *logger.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		contents: contents,
		versions: versions,
		sources:  sources,
		chunks:   chunks,
		messages: messages,
		logs:     logs,
		log:      log.With("service", "WorkspaceService"),
	}
}

// Load builds the payload for one content row. The secondary reads are
// independent and run in parallel; each is optional and a miss leaves its
// field empty rather than failing the load.
func (s *WorkspaceService) Load(ctx context.Context, organizationID, contentID uuid.UUID, includeChat bool) (*WorkspacePayload, error) {
	contentRow, err := s.contents.GetByID(dbctx.New(ctx), organizationID, contentID)
	if err != nil {
		return nil, err
	}

	payload := &WorkspacePayload{Content: contentRow}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		version, err := s.versions.GetLatest(dbctx.New(gctx), contentRow.ID)
		if err != nil {
			return nil
		}
		payload.Version = version
		var sections []generation.Section
		if json.Unmarshal(version.Sections, &sections) == nil {
			payload.Sections = sections
		}
		return nil
	})

	if contentRow.SourceContentID != nil {
		sourceID := *contentRow.SourceContentID
		g.Go(func() error {
			src, err := s.sources.GetByID(dbctx.New(gctx), organizationID, sourceID)
			if err != nil {
				return nil
			}
			payload.Source = src
			if chunks, err := s.chunks.GetBySourceContentID(dbctx.New(gctx), sourceID); err == nil {
				payload.Chunks = chunks
			}
			return nil
		})
	}

	if includeChat && contentRow.ConversationID != nil {
		conversationID := *contentRow.ConversationID
		g.Go(func() error {
			if msgs, err := s.messages.ListByConversation(dbctx.New(gctx), conversationID, 100); err == nil {
				payload.Messages = msgs
			}
			return nil
		})
		g.Go(func() error {
			if logs, err := s.logs.ListByConversation(dbctx.New(gctx), conversationID, 100); err == nil {
				payload.Logs = logs
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payload, nil
}

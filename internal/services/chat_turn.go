package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	chatrepo "github.com/yungbote/draftdeck-backend/internal/data/repos/chat"
	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/modules/chatagent"
	"github.com/yungbote/draftdeck-backend/internal/modules/generation"
	"github.com/yungbote/draftdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

// ChatTurnInput is one user turn against a (possibly new) conversation.
type ChatTurnInput struct {
	OrganizationID uuid.UUID
	ConversationID *uuid.UUID
	// ContentID is the workspace the chat is happening inside, when there
	// is one; its cached payload goes stale as messages append.
	ContentID     *uuid.UUID
	UserMessage   string
	ContextBlocks []string
	BaseURL       string
}

// ChatTurnResult is what the transport layer renders back: the assistant
// text and, when a tool ran, the draft it produced.
type ChatTurnResult struct {
	ConversationID uuid.UUID                      `json:"conversationId"`
	Outcome        chatagent.TurnOutcome          `json:"outcome"`
	Text           string                         `json:"text,omitempty"`
	Draft          *generation.GenerateDraftResult `json:"draft,omitempty"`
}

// ChatTurnService persists the turn, runs the agent once, and executes the
// resulting tool invocation. Chaining back into the model after a tool run
// is deliberately out of scope for the agent; this service is the caller
// that decides what happens with the tool result.
type ChatTurnService struct {
	conversations chatrepo.ConversationRepo
	messages      chatrepo.MessageRepo
	logs          chatrepo.LogRepo
	agent         *chatagent.Agent
	gen           *generation.Service
	cache         generation.CacheInvalidator
	log           *logger.Logger
}

func NewChatTurnService(
	conversations chatrepo.ConversationRepo,
	messages chatrepo.MessageRepo,
	logs chatrepo.LogRepo,
	agent *chatagent.Agent,
	gen *generation.Service,
	cache generation.CacheInvalidator,
	log *logger.Logger,
) *ChatTurnService {
	return &ChatTurnService{
		conversations: conversations,
		messages:      messages,
		logs:          logs,
		agent:         agent,
		gen:           gen,
		cache:         cache,
		log:           log.With("service", "ChatTurnService"),
	}
}

func (s *ChatTurnService) RunTurn(ctx context.Context, in ChatTurnInput) (*ChatTurnResult, error) {
	dbc := dbctx.New(ctx)

	var conversation *domain.Conversation
	if in.ConversationID != nil {
		var err error
		conversation, err = s.conversations.GetByID(dbc, in.OrganizationID, *in.ConversationID)
		if err != nil {
			return nil, err
		}
	} else {
		conversation = &domain.Conversation{
			ID:             uuid.New(),
			OrganizationID: in.OrganizationID,
			Title:          truncateTitle(in.UserMessage),
		}
		if err := s.conversations.Create(dbc, conversation); err != nil {
			return nil, err
		}
	}

	history, err := s.messages.ListByConversation(dbc, conversation.ID, 50)
	if err != nil {
		return nil, err
	}

	turn, err := s.agent.RunTurn(ctx, chatagent.TurnInput{
		UserMessage:   in.UserMessage,
		History:       history,
		ContextBlocks: in.ContextBlocks,
	})
	if err != nil {
		return nil, err
	}

	if err := s.messages.Create(dbc, &domain.ConversationMessage{
		ConversationID: conversation.ID,
		OrganizationID: in.OrganizationID,
		Role:           domain.MessageRoleUser,
		Content:        in.UserMessage,
	}); err != nil {
		return nil, err
	}

	result := &ChatTurnResult{
		ConversationID: conversation.ID,
		Outcome:        turn.Outcome,
		Text:           turn.Text,
	}

	if turn.Outcome == chatagent.OutcomeToolInvocation {
		s.recordToolCall(dbc, conversation, turn)
		if turn.Invocation != nil {
			draft, execErr := s.executeInvocation(ctx, in, conversation.ID, turn.Invocation)
			if execErr != nil {
				return nil, execErr
			}
			result.Draft = draft
		}
	}

	assistantText := turn.Text
	if assistantText == "" && result.Draft != nil {
		assistantText = "Draft updated."
	}
	if assistantText != "" {
		if err := s.messages.Create(dbc, &domain.ConversationMessage{
			ConversationID: conversation.ID,
			OrganizationID: in.OrganizationID,
			Role:           domain.MessageRoleAssistant,
			Content:        assistantText,
		}); err != nil {
			return nil, err
		}
	}
	_ = s.conversations.Touch(dbc, conversation.ID)

	// The appended messages are part of the cached workspace payload.
	if s.cache != nil && in.ContentID != nil {
		s.cache.Invalidate(in.OrganizationID, *in.ContentID)
	}

	return result, nil
}

func (s *ChatTurnService) executeInvocation(ctx context.Context, in ChatTurnInput, conversationID uuid.UUID, inv *chatagent.ChatToolInvocation) (*generation.GenerateDraftResult, error) {
	switch inv.Name {
	case chatagent.ToolGenerateContent:
		args := inv.GenerateContent
		genIn := generation.GenerateDraftInput{
			OrganizationID: in.OrganizationID,
			ConversationID: &conversationID,
			BaseURL:        in.BaseURL,
			Temperature:    args.Temperature,
		}
		if args.ContentID != nil {
			if id, err := uuid.Parse(*args.ContentID); err == nil {
				genIn.ContentID = &id
			}
		}
		if args.SourceContentID != nil {
			if id, err := uuid.Parse(*args.SourceContentID); err == nil {
				genIn.SourceContentID = &id
			}
		}
		if args.SourceText != nil {
			genIn.SourceText = *args.SourceText
		} else if args.Transcript != nil {
			genIn.SourceText = *args.Transcript
		}
		if args.Title != nil {
			genIn.Title = *args.Title
		}
		if args.Slug != nil {
			genIn.Slug = *args.Slug
		}
		if args.Status != nil {
			genIn.Status = *args.Status
		}
		if args.PrimaryKeyword != nil {
			genIn.PrimaryKeyword = *args.PrimaryKeyword
		}
		if args.TargetLocale != nil {
			genIn.TargetLocale = *args.TargetLocale
		}
		if args.ContentType != nil {
			genIn.ContentType = *args.ContentType
		}
		if args.SystemPrompt != nil {
			genIn.SystemPrompt = *args.SystemPrompt
		}

		history, err := s.messages.ListByConversation(dbctx.New(ctx), conversationID, 50)
		if err == nil {
			genIn.History = history
		}
		return s.gen.GenerateDraft(ctx, genIn)

	case chatagent.ToolPatchSection:
		args := inv.PatchSection
		contentID, err := uuid.Parse(args.ContentID)
		if err != nil {
			return nil, err
		}
		patchIn := generation.PatchSectionInput{
			OrganizationID: in.OrganizationID,
			ContentID:      contentID,
			BaseURL:        in.BaseURL,
			Temperature:    args.Temperature,
		}
		applySectionTarget(&patchIn, args.SectionID, args.SectionTitle)
		if args.Instructions != nil {
			patchIn.Instructions = *args.Instructions
		}
		return s.gen.PatchSection(ctx, patchIn)
	}
	return nil, nil
}

func (s *ChatTurnService) recordToolCall(dbc dbctx.Context, conversation *domain.Conversation, turn *chatagent.TurnResult) {
	payload := map[string]any{}
	if turn.RawCall != nil {
		payload["name"] = turn.RawCall.Function.Name
		payload["arguments"] = turn.RawCall.Function.Arguments
	}
	payload["parsed"] = turn.Invocation != nil
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.logs.Create(dbc, &domain.ConversationLog{
		ConversationID: conversation.ID,
		OrganizationID: conversation.OrganizationID,
		Type:           "tool_call",
		Message:        "model requested a tool",
		Payload:        datatypes.JSON(raw),
	}); err != nil {
		s.log.Warn("tool call log write failed", "error", err.Error())
	}
}

// applySectionTarget maps the tool's section reference onto the patch
// input: a numeric sectionId targets by index, any other sectionId is
// treated as a title reference; an explicit sectionTitle wins over both.
func applySectionTarget(patchIn *generation.PatchSectionInput, sectionID, sectionTitle *string) {
	if sectionID != nil {
		if idx, ok := parseSectionIndex(*sectionID); ok {
			patchIn.SectionIndex = &idx
		} else {
			patchIn.SectionTitle = *sectionID
		}
	}
	if sectionTitle != nil {
		patchIn.SectionTitle = *sectionTitle
	}
}

func parseSectionIndex(s string) (int, bool) {
	idx := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	if s == "" {
		return 0, false
	}
	return idx, true
}

func truncateTitle(s string) string {
	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

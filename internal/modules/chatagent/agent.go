package chatagent

import (
	"context"
	"strings"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

const systemPrompt = `You are an autonomous content-creation assistant. When the user asks you to create, regenerate, or edit content, prefer calling the appropriate tool over describing what you would do. When no tool applies, reply concisely in 2-4 sentences.`

// TurnOutcome distinguishes the two terminal states of a chat turn.
type TurnOutcome string

const (
	// OutcomeToolInvocation means the model asked for a tool; Invocation
	// may still be nil if its arguments failed to parse.
	OutcomeToolInvocation TurnOutcome = "tool_invocation"
	// OutcomeAssistantReply means the model answered in text.
	OutcomeAssistantReply TurnOutcome = "assistant_reply"
)

// TurnInput is one user turn plus everything the prompt is built from.
type TurnInput struct {
	UserMessage   string
	History       []domain.ConversationMessage
	ContextBlocks []string
}

// TurnResult is the resolved terminal state of one turn.
type TurnResult struct {
	Outcome    TurnOutcome
	Text       string
	Invocation *ChatToolInvocation
	RawCall    *openai.ToolCall
}

// Agent runs exactly one completion per turn. It never chains on tool
// results itself; executing the invocation and deciding whether to ask the
// model to continue is the caller's job.
type Agent struct {
	ai  openai.Client
	log *logger.Logger
}

func NewAgent(ai openai.Client, log *logger.Logger) *Agent {
	return &Agent{ai: ai, log: log.With("service", "ChatAgent")}
}

// RunTurn builds the prompt, makes the single completion call with both
// tools advertised, and resolves the response. Completion failures
// propagate to the caller untouched; they are a hard failure of the turn.
func (a *Agent) RunTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, apierr.Validationf("message_required", "user message is required")
	}

	system := systemPrompt
	if len(in.ContextBlocks) > 0 {
		blocks := make([]string, 0, len(in.ContextBlocks))
		for _, b := range in.ContextBlocks {
			if s := strings.TrimSpace(b); s != "" {
				blocks = append(blocks, s)
			}
		}
		if len(blocks) > 0 {
			system = system + "\n\n" + strings.Join(blocks, "\n\n")
		}
	}

	messages := make([]openai.Message, 0, len(in.History)+2)
	messages = append(messages, openai.Message{Role: "system", Content: system})
	for _, m := range in.History {
		role := m.Role
		if role != domain.MessageRoleUser && role != domain.MessageRoleAssistant {
			continue
		}
		messages = append(messages, openai.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.Message{Role: "user", Content: in.UserMessage})

	res, err := a.ai.Complete(ctx, openai.CompletionRequest{
		Messages:   messages,
		Tools:      ToolDefinitions(),
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, err
	}

	if res.ToolCall != nil {
		inv := ParseToolCall(res.ToolCall)
		if inv == nil {
			a.log.Warn("tool call did not parse",
				"tool_name", res.ToolCall.Function.Name)
		}
		return &TurnResult{
			Outcome:    OutcomeToolInvocation,
			Text:       strings.TrimSpace(res.Text),
			Invocation: inv,
			RawCall:    res.ToolCall,
		}, nil
	}

	return &TurnResult{
		Outcome: OutcomeAssistantReply,
		Text:    strings.TrimSpace(res.Text),
	}, nil
}

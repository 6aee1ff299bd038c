package chatagent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/apierr"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

type fakeClient struct {
	completeFn func(req openai.CompletionRequest) (openai.CompletionResult, error)
	lastReq    openai.CompletionRequest
	calls      int
}

func (f *fakeClient) Complete(_ context.Context, req openai.CompletionRequest) (openai.CompletionResult, error) {
	f.calls++
	f.lastReq = req
	return f.completeFn(req)
}

func (f *fakeClient) CompleteText(ctx context.Context, system, user string) (string, error) {
	res, err := f.Complete(ctx, openai.CompletionRequest{
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	return res.Text, err
}

func (f *fakeClient) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("not scripted")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestRunTurnAssistantReply(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{Text: "Here is a short answer."}, nil
		},
	}
	agent := NewAgent(fake, testLogger(t))

	res, err := agent.RunTurn(context.Background(), TurnInput{UserMessage: "what is a slug?"})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Outcome != OutcomeAssistantReply {
		t.Errorf("outcome %q, want assistant reply", res.Outcome)
	}
	if res.Text != "Here is a short answer." {
		t.Errorf("text %q not carried through", res.Text)
	}
	if res.Invocation != nil {
		t.Error("no tool call was made, invocation should be nil")
	}
	if fake.calls != 1 {
		t.Errorf("made %d completion calls, want exactly one per turn", fake.calls)
	}
}

func TestRunTurnToolInvocation(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{
				Text: "Generating now.",
				ToolCall: &openai.ToolCall{
					ID:   "call_1",
					Type: "function",
					Function: openai.ToolCallFunction{
						Name:      ToolGenerateContent,
						Arguments: `{"title":"Sourdough 101"}`,
					},
				},
			}, nil
		},
	}
	agent := NewAgent(fake, testLogger(t))

	res, err := agent.RunTurn(context.Background(), TurnInput{UserMessage: "write a post about sourdough"})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Outcome != OutcomeToolInvocation {
		t.Fatalf("outcome %q, want tool invocation", res.Outcome)
	}
	if res.Invocation == nil || res.Invocation.Name != ToolGenerateContent {
		t.Fatalf("invocation not parsed: %+v", res.Invocation)
	}
	if res.Text != "Generating now." {
		t.Errorf("accompanying text %q lost", res.Text)
	}

	if len(fake.lastReq.Tools) != 2 {
		t.Errorf("advertised %d tools, want 2", len(fake.lastReq.Tools))
	}
	if fake.lastReq.ToolChoice != "auto" {
		t.Errorf("tool choice %v, want auto", fake.lastReq.ToolChoice)
	}
}

func TestRunTurnUnparsableToolCall(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{
				ToolCall: &openai.ToolCall{
					Function: openai.ToolCallFunction{
						Name:      ToolGenerateContent,
						Arguments: `not json`,
					},
				},
			}, nil
		},
	}
	agent := NewAgent(fake, testLogger(t))

	res, err := agent.RunTurn(context.Background(), TurnInput{UserMessage: "go"})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Outcome != OutcomeToolInvocation {
		t.Errorf("outcome %q, want tool invocation even when parsing fails", res.Outcome)
	}
	if res.Invocation != nil {
		t.Errorf("unparsable arguments should leave invocation nil, got %+v", res.Invocation)
	}
	if res.RawCall == nil {
		t.Error("raw call should still be surfaced for logging")
	}
}

func TestRunTurnPromptShape(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{Text: "ok"}, nil
		},
	}
	agent := NewAgent(fake, testLogger(t))

	history := []domain.ConversationMessage{
		{Role: domain.MessageRoleUser, Content: "earlier question"},
		{Role: domain.MessageRoleAssistant, Content: "earlier answer"},
		{Role: "tool", Content: "should be skipped"},
	}
	_, err := agent.RunTurn(context.Background(), TurnInput{
		UserMessage:   "new question",
		History:       history,
		ContextBlocks: []string{"Current draft: Sourdough 101"},
	})
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	msgs := fake.lastReq.Messages
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want system + 2 history + user", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "Current draft: Sourdough 101") {
		t.Errorf("context block missing from system message: %q", msgs[0].Content)
	}
	if msgs[1].Content != "earlier question" || msgs[2].Content != "earlier answer" {
		t.Errorf("history out of order: %+v", msgs[1:3])
	}
	if msgs[3].Role != "user" || msgs[3].Content != "new question" {
		t.Errorf("user message must come last: %+v", msgs[3])
	}
}

func TestRunTurnCompletionFailurePropagates(t *testing.T) {
	boom := errors.New("upstream 503")
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{}, boom
		},
	}
	agent := NewAgent(fake, testLogger(t))

	_, err := agent.RunTurn(context.Background(), TurnInput{UserMessage: "go"})
	if !errors.Is(err, boom) {
		t.Errorf("completion failure should propagate untouched, got %v", err)
	}
}

func TestRunTurnEmptyMessage(t *testing.T) {
	agent := NewAgent(&fakeClient{}, testLogger(t))
	_, err := agent.RunTurn(context.Background(), TurnInput{UserMessage: "   "})
	if !apierr.IsValidation(err) {
		t.Errorf("got %v, want validation error", err)
	}
}

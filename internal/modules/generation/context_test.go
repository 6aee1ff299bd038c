package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

func TestSynthesizeConversationContextNoUserTurns(t *testing.T) {
	fake := &fakeClient{}
	messages := []domain.ConversationMessage{
		{Role: domain.MessageRoleAssistant, Content: "hello, how can I help?"},
		{Role: domain.MessageRoleSystem, Content: "system note"},
	}

	got := SynthesizeConversationContext(context.Background(), fake, nil, messages)
	if got != NoIntentSentinel {
		t.Errorf("got %q, want sentinel", got)
	}
	if fake.calls != 0 {
		t.Errorf("made %d completion calls, want none without user turns", fake.calls)
	}
}

func TestSynthesizeConversationContextSummarizes(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{Text: "  User wants a blog post about sourdough.  "}, nil
		},
	}
	messages := []domain.ConversationMessage{
		{Role: domain.MessageRoleUser, Content: "write about sourdough"},
	}

	got := SynthesizeConversationContext(context.Background(), fake, nil, messages)
	if got != "User wants a blog post about sourdough." {
		t.Errorf("got %q, want trimmed summary", got)
	}
}

func TestSynthesizeConversationContextFallsBackOnFailure(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{}, errors.New("upstream 500")
		},
	}
	long := strings.Repeat("sourdough starters need daily feeding ", 40)
	messages := []domain.ConversationMessage{
		{Role: domain.MessageRoleUser, Content: "first turn"},
		{Role: domain.MessageRoleUser, Content: long},
	}

	got := SynthesizeConversationContext(context.Background(), fake, nil, messages)
	if !strings.HasPrefix(got, "User intent: ") {
		t.Fatalf("got %q, want fallback prefix", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long fallback %q should be truncated with ellipsis", got)
	}
	if len(got) > len("User intent: ")+intentFallbackMaxLen+3 {
		t.Errorf("fallback length %d exceeds cap", len(got))
	}
}

func TestSynthesizeConversationContextFallbackKeepsAllUserTurns(t *testing.T) {
	fake := &fakeClient{
		completeFn: func(req openai.CompletionRequest) (openai.CompletionResult, error) {
			return openai.CompletionResult{}, errors.New("upstream 500")
		},
	}
	messages := []domain.ConversationMessage{
		{Role: domain.MessageRoleUser, Content: "a croissant tutorial"},
		{Role: domain.MessageRoleAssistant, Content: "sure, any angle?"},
		{Role: domain.MessageRoleUser, Content: "focus on lamination"},
	}

	got := SynthesizeConversationContext(context.Background(), fake, nil, messages)
	want := "User intent: a croissant tutorial\n\nfocus on lamination"
	if got != want {
		t.Errorf("got %q, want the joined user turns %q", got, want)
	}
}

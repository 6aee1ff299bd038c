package generation

import (
	"testing"

	"github.com/yungbote/draftdeck-backend/internal/domain"
)

func TestDetermineMode(t *testing.T) {
	cases := []struct {
		name       string
		hasSource  bool
		hasHistory bool
		want       Mode
	}{
		{"source only", true, false, ModeContext},
		{"history only", false, true, ModeConversation},
		{"source and history", true, true, ModeHybrid},
		{"neither", false, false, ModeConversation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineMode(tc.hasSource, tc.hasHistory); got != tc.want {
				t.Errorf("DetermineMode(%v, %v) = %q, want %q", tc.hasSource, tc.hasHistory, got, tc.want)
			}
		})
	}
}

func TestHasConversationHistoryCountsAnyRole(t *testing.T) {
	assistantOnly := []domain.ConversationMessage{
		{Role: domain.MessageRoleAssistant, Content: "here is a draft outline"},
	}
	if !hasConversationHistory(assistantOnly) {
		t.Error("assistant-only history should count as conversation history")
	}
	if got := DetermineMode(true, hasConversationHistory(assistantOnly)); got != ModeHybrid {
		t.Errorf("source + assistant-only history = %q, want %q", got, ModeHybrid)
	}

	blank := []domain.ConversationMessage{
		{Role: domain.MessageRoleUser, Content: "   "},
	}
	if hasConversationHistory(blank) {
		t.Error("whitespace-only turns are not history")
	}
	if hasConversationHistory(nil) {
		t.Error("empty history should not count")
	}
}

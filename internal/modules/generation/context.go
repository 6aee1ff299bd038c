package generation

import (
	"context"
	"strings"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
	"github.com/yungbote/draftdeck-backend/internal/platform/openai"
)

// NoIntentSentinel is returned when the conversation holds no user turns at
// all; downstream prompts treat it as "start from scratch".
const NoIntentSentinel = "No user intent available from conversation."

const intentFallbackMaxLen = 1000

const intentSystemPrompt = `You summarize what a user wants from a content-drafting conversation. Reply with a short paragraph describing the user's intent: topic, angle, audience, and any constraints they stated. Do not add commentary.`

// SynthesizeConversationContext distills the user's turns of a conversation
// into a short intent statement for the drafting prompts. Model failure is
// not fatal: the raw user turns, joined and truncated, stand in for the
// summary.
func SynthesizeConversationContext(ctx context.Context, ai openai.Client, log *logger.Logger, messages []domain.ConversationMessage) string {
	var userTurns []string
	for _, m := range messages {
		if m.Role == domain.MessageRoleUser && strings.TrimSpace(m.Content) != "" {
			userTurns = append(userTurns, strings.TrimSpace(m.Content))
		}
	}
	if len(userTurns) == 0 {
		return NoIntentSentinel
	}

	joined := strings.Join(userTurns, "\n\n")
	summary, err := ai.CompleteText(ctx, intentSystemPrompt, joined)
	if err == nil {
		if s := strings.TrimSpace(summary); s != "" {
			return s
		}
	} else if log != nil {
		log.Warn("intent synthesis failed, using fallback", "error", err.Error())
	}

	if len(joined) > intentFallbackMaxLen {
		joined = joined[:intentFallbackMaxLen] + "..."
	}
	return "User intent: " + joined
}

package generation

// Mode selects how much grounding the draft pipeline has to work with.
type Mode string

const (
	// ModeHybrid grounds on source material and steers with chat history.
	ModeHybrid Mode = "hybrid"
	// ModeContext grounds on source material alone.
	ModeContext Mode = "context"
	// ModeConversation has only the chat history to go on.
	ModeConversation Mode = "conversation"
)

// DetermineMode picks the generation mode from what the request carries.
// Source material wins over history; history alone falls through to
// conversation mode.
func DetermineMode(hasSource, hasHistory bool) Mode {
	switch {
	case hasSource && hasHistory:
		return ModeHybrid
	case hasSource:
		return ModeContext
	default:
		return ModeConversation
	}
}

package domain

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxConversationTurns bounds the rolling history kept per conversation.
const MaxConversationTurns = 10

// ConversationTurn is one entry of the rolling per-conversation history.
// The history is plain-text context only; no semantic compression happens.
type ConversationTurn struct {
	Role    string
	Content string
}

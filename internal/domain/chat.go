package domain

import "context"

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter is the port to a chat-completion language model.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error)
}

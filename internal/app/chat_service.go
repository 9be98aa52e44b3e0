package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spillthepill/internal/domain"
)

const pillBotPrompt = "You are PillBot, a helpful AI assistant for medication and health information. " +
	"Provide accurate, helpful, and safe medical advice. " +
	"Always remind users to consult healthcare professionals for specific medical concerns."

// maxHistoryTurns bounds how much prior conversation is sent to the model.
const maxHistoryTurns = 10

// ChatService answers free-form questions as PillBot.
type ChatService struct {
	llm       domain.ChatCompleter
	maxTokens int
	log       *slog.Logger
}

func NewChatService(llm domain.ChatCompleter, maxTokens int, log *slog.Logger) *ChatService {
	return &ChatService{llm: llm, maxTokens: maxTokens, log: log}
}

// Reply answers message given the earlier turns of the conversation. Only
// user and assistant turns from history are kept.
func (s *ChatService) Reply(ctx context.Context, message string, history []domain.ChatMessage) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.Invalid("Message is required")
	}

	var turns []domain.ChatMessage
	for _, m := range history {
		if (m.Role == domain.RoleUser || m.Role == domain.RoleAssistant) && strings.TrimSpace(m.Content) != "" {
			turns = append(turns, m)
		}
	}
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	msgs := make([]domain.ChatMessage, 0, len(turns)+2)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: pillBotPrompt})
	msgs = append(msgs, turns...)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	reply, err := s.llm.Complete(ctx, msgs, s.maxTokens)
	if err != nil {
		s.log.WarnContext(ctx, "chat completion failed", "error", err)
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return reply, nil
}

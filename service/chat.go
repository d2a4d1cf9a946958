package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"barkeep/completion"
	"barkeep/coordinator"
	"barkeep/recipe"
	"barkeep/session"
)

// ChatContext selects what the bartender is answering questions about.
type ChatContext string

const (
	ChatRecipe  ChatContext = "recipe"
	ChatGeneral ChatContext = "general"
)

// ParseChatContext accepts "recipe" and "general" ("" is general).
func ParseChatContext(s string) (ChatContext, error) {
	switch c := ChatContext(strings.ToLower(strings.TrimSpace(s))); c {
	case "", ChatGeneral:
		return ChatGeneral, nil
	case ChatRecipe:
		return ChatRecipe, nil
	default:
		return "", fmt.Errorf("unknown chat context %q", s)
	}
}

var chatParams = completion.Params{
	MaxTokens:        750,
	Temperature:      1,
	TopP:             1,
	FrequencyPenalty: 0.2,
	PresencePenalty:  0.6,
}

// ChatHistory is the persisted conversation. Messages holds user and assistant turns
// only; the system message is rebuilt on every call.
type ChatHistory struct {
	Context  ChatContext          `json:"context" yaml:"context"`
	Messages []completion.Message `json:"messages" yaml:"messages"`
}

// ChatService answers follow-up questions with a persisted history.
type ChatService struct {
	coord   *coordinator.Coordinator
	store   *session.Store
	recipes *RecipeService
	models  []string
}

func NewChatService(coord *coordinator.Coordinator, store *session.Store, recipes *RecipeService, models []string) *ChatService {
	return &ChatService{coord: coord, store: store, recipes: recipes, models: models}
}

// Ask sends question with the session's history and returns the bartender's reply.
// Switching context starts a new history. If every model fails the history is unchanged.
func (s *ChatService) Ask(ctx context.Context, id session.ID, cc ChatContext, question string, models []string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question must not be empty")
	}
	if len(models) == 0 {
		models = s.models
	}

	system, err := s.systemPrompt(ctx, id, cc)
	if err != nil {
		return "", err
	}

	h, ok := s.History(ctx, id)
	if !ok || h.Context != cc {
		h = ChatHistory{Context: cc}
	}

	msgs := make([]completion.Message, 0, len(h.Messages)+2)
	msgs = append(msgs, completion.Message{Role: completion.RoleSystem, Content: system})
	msgs = append(msgs, h.Messages...)
	msgs = append(msgs, completion.Message{Role: completion.RoleUser, Content: question})

	reply, err := s.coord.Reply(ctx, "bartender chat", models, func(model string) completion.Request {
		return completion.Request{Model: model, Messages: msgs, Params: chatParams}
	})
	if err != nil {
		return "", fmt.Errorf("could not get a reply, please retry: %w", err)
	}

	h.Messages = append(h.Messages,
		completion.Message{Role: completion.RoleUser, Content: question},
		completion.Message{Role: completion.RoleAssistant, Content: reply},
	)
	if err := s.store.Put(ctx, id, session.KindChat, h); err != nil {
		return "", fmt.Errorf("persist chat: %w", err)
	}
	slog.Info("SERVICE: Chat reply stored", "session_id", id, "context", cc, "turns", len(h.Messages)/2)
	return reply, nil
}

func (s *ChatService) systemPrompt(ctx context.Context, id session.ID, cc ChatContext) (string, error) {
	switch cc {
	case ChatRecipe:
		r, ok := s.recipes.Current(ctx, id)
		if !ok {
			return "", &MissingStateError{ID: id, Missing: []session.Kind{session.KindRecipe}}
		}
		return recipeChatPrompt(r), nil
	case ChatGeneral:
		return "You are a master mixologist answering a user's questions about bartending.", nil
	default:
		return "", fmt.Errorf("unknown chat context %q", cc)
	}
}

func recipeChatPrompt(r recipe.Recipe) string {
	return "You are a master mixologist answering a user's questions about the recipe you created for them:\n\n" + r.Text()
}

// History returns the stored conversation.
func (s *ChatService) History(ctx context.Context, id session.ID) (ChatHistory, bool) {
	var h ChatHistory
	if !s.store.Get(ctx, id, session.KindChat, &h) {
		return ChatHistory{}, false
	}
	return h, true
}

// Reset clears the conversation.
func (s *ChatService) Reset(ctx context.Context, id session.ID) error {
	return s.store.Delete(ctx, id, session.KindChat)
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

// SampleLine is one message of the sample conversation.
type SampleLine struct {
	Name  string
	Email string
	Text  string
}

// SampleConversation is a short team chat that resolves to Tuesday afternoon.
var SampleConversation = []SampleLine{
	{"Alice Johnson", "alice@email.com", "Hey everyone! Hope you're all doing well."},
	{"Bob Smith", "bob@email.com", "Hi Alice! Yes, all good here. How about you?"},
	{"Carol Davis", "carol@email.com", "Hello! I'm great, thanks for asking."},
	{"Alice Johnson", "alice@email.com", "I was thinking we should have a team meeting soon to discuss the project."},
	{"Bob Smith", "bob@email.com", "That's a great idea! I'm available Monday to Wednesday next week."},
	{"Carol Davis", "carol@email.com", "Sounds good! I can do Tuesday or Wednesday afternoon."},
	{"Alice Johnson", "alice@email.com", "I'm free on Tuesday and Wednesday as well. Tuesday afternoon works for me."},
	{"Bob Smith", "bob@email.com", "Perfect! Tuesday afternoon it is then."},
	{"Carol Davis", "carol@email.com", "Agreed! Let's schedule it."},
}

// SeedConversationCommand loads SampleConversation into an empty store.
type SeedConversationCommand struct {
	// Force seeds even when participants already exist.
	Force bool
}

// SeedConversationResult reports how many messages were written.
type SeedConversationResult struct {
	Seeded   bool
	Messages int
}

// SeedConversationHandler handles SeedConversationCommand.
type SeedConversationHandler struct {
	participants domain.ParticipantRepository
	post         *PostMessageHandler
	now          func() time.Time
	logger       *slog.Logger
}

// NewSeedConversationHandler creates a new SeedConversationHandler.
func NewSeedConversationHandler(participants domain.ParticipantRepository, post *PostMessageHandler, logger *slog.Logger) *SeedConversationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedConversationHandler{
		participants: participants,
		post:         post,
		now:          time.Now,
		logger:       logger,
	}
}

// Handle seeds the sample chat unless the store already has participants.
func (h *SeedConversationHandler) Handle(ctx context.Context, cmd SeedConversationCommand) (*SeedConversationResult, error) {
	if !cmd.Force {
		n, err := h.participants.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			h.logger.InfoContext(ctx, "chat already has participants, skipping seed", "participants", n)
			return &SeedConversationResult{}, nil
		}
	}

	// One second apart, ending now.
	start := h.now().Add(-time.Duration(len(SampleConversation)) * time.Second)
	for i, line := range SampleConversation {
		_, err := h.post.Handle(ctx, PostMessageCommand{
			Name:   line.Name,
			Email:  line.Email,
			Text:   line.Text,
			SentAt: start.Add(time.Duration(i+1) * time.Second),
		})
		if err != nil {
			return nil, err
		}
	}

	h.logger.InfoContext(ctx, "sample conversation seeded", "messages", len(SampleConversation))
	return &SeedConversationResult{Seeded: true, Messages: len(SampleConversation)}, nil
}

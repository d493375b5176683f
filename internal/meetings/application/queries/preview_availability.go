package queries

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
)

// Conversation supplies the chat history to inspect.
type Conversation interface {
	Load(ctx context.Context) ([]availability.Message, error)
}

// AvailabilityExtractor reads availability out of a chat.
type AvailabilityExtractor interface {
	Extract(messages []availability.Message) *availability.Availability
	Vocabulary() availability.Vocabulary
}

// AvailabilityRow is one participant's stated availability.
type AvailabilityRow struct {
	Name  string
	Email string
	// Slots are vocabulary labels in canonical order.
	Slots []string
}

// AvailabilityPreview shows what the chat says before anything is booked.
type AvailabilityPreview struct {
	Rows []AvailabilityRow
	// Support counts participants per candidate slot label.
	Support map[string]int
	// Candidates are the labels in Support, in canonical slot order.
	Candidates []string
}

// PreviewAvailabilityHandler builds an AvailabilityPreview from the chat.
type PreviewAvailabilityHandler struct {
	conversation Conversation
	extractor    AvailabilityExtractor
}

// NewPreviewAvailabilityHandler creates a new PreviewAvailabilityHandler.
func NewPreviewAvailabilityHandler(conversation Conversation, extractor AvailabilityExtractor) *PreviewAvailabilityHandler {
	return &PreviewAvailabilityHandler{conversation: conversation, extractor: extractor}
}

// Handle lists participants in first-appearance order.
func (h *PreviewAvailabilityHandler) Handle(ctx context.Context) (*AvailabilityPreview, error) {
	messages, err := h.conversation.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	vocab := h.extractor.Vocabulary()
	avail := h.extractor.Extract(messages)

	preview := &AvailabilityPreview{
		Rows: lo.Map(avail.Participants(), func(p availability.Participant, _ int) AvailabilityRow {
			return AvailabilityRow{
				Name:  p.Name,
				Email: p.Email,
				Slots: lo.Map(avail.SlotsFor(p.Email).Slots(), func(s availability.Slot, _ int) string {
					return vocab.SlotLabel(s)
				}),
			}
		}),
		Support: make(map[string]int),
	}
	for _, slot := range avail.Candidates().Slots() {
		label := vocab.SlotLabel(slot)
		preview.Support[label] = avail.Support(slot)
		preview.Candidates = append(preview.Candidates, label)
	}
	return preview, nil
}

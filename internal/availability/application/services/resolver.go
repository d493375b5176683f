package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// User-facing wording for each outcome.
const (
	MessageNoIntent          = "No meeting scheduling intent detected in the chat."
	MessageNeedsAvailability = "Could you please share your availability? For example: 'I'm available Tuesday afternoon' or 'Monday to Wednesday works for me'"
	messageNoConsensus       = "I found these availabilities: %s. Could you find a common time that works for everyone?"
	messageScheduled         = "Great! I've scheduled a meeting for %s."
)

// Resolver runs intent classification, availability extraction, slot
// selection and date materialization over a chat history.
// It keeps no state between calls and may be shared across goroutines.
type Resolver struct {
	vocab        domain.Vocabulary
	classifier   *IntentClassifier
	extractor    *AvailabilityExtractor
	selector     *SlotSelector
	materializer *DateMaterializer
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewResolver wires the resolver stages for vocab and policy.
func NewResolver(vocab domain.Vocabulary, policy domain.Policy, clock Clock, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	classifier, err := NewIntentClassifier(vocab)
	if err != nil {
		return nil, fmt.Errorf("build intent classifier: %w", err)
	}
	extractor, err := NewAvailabilityExtractor(vocab)
	if err != nil {
		return nil, fmt.Errorf("build availability extractor: %w", err)
	}

	return &Resolver{
		vocab:        vocab,
		classifier:   classifier,
		extractor:    extractor,
		selector:     NewSlotSelector(policy),
		materializer: NewDateMaterializer(vocab, clock),
		logger:       logger,
		metrics:      observability.NoopMetrics{},
	}, nil
}

// WithMetrics counts resolutions by outcome on m.
func (r *Resolver) WithMetrics(m observability.Metrics) *Resolver {
	if m != nil {
		r.metrics = m
	}
	return r
}

// Vocabulary returns the vocabulary the resolver matches against.
func (r *Resolver) Vocabulary() domain.Vocabulary {
	return r.vocab
}

// Extract exposes the availability stage on its own.
func (r *Resolver) Extract(messages []domain.Message) *domain.Availability {
	return r.extractor.Extract(messages)
}

// Resolve decides what to do about messages. The availability mapping is
// recomputed from the whole history on every call.
func (r *Resolver) Resolve(ctx context.Context, messages []domain.Message) domain.Resolution {
	res := r.resolve(messages)

	r.metrics.Counter(observability.MetricResolutions, 1, observability.T(observability.OutcomeKey, string(res.Outcome)))
	attrs := []any{
		observability.OutcomeKey, res.Outcome,
		"messages", len(messages),
	}
	if res.Availability != nil {
		attrs = append(attrs, "participants", res.Availability.Len())
	}
	if res.Proposal != nil {
		attrs = append(attrs, "slot", res.Proposal.Slot.String(), "support", res.Proposal.Support)
	}
	r.logger.DebugContext(ctx, "chat resolved", attrs...)

	return res
}

func (r *Resolver) resolve(messages []domain.Message) domain.Resolution {
	if !r.classifier.HasIntent(messages) {
		return domain.Resolution{
			Outcome: domain.OutcomeNoIntent,
			Message: MessageNoIntent,
		}
	}

	availability := r.extractor.Extract(messages)
	if availability.IsEmpty() {
		return domain.Resolution{
			Outcome:      domain.OutcomeNeedsAvailability,
			Message:      MessageNeedsAvailability,
			Availability: availability,
		}
	}

	selection, ok := r.selector.Select(availability)
	if !ok {
		return domain.Resolution{
			Outcome:      domain.OutcomeNoConsensus,
			Message:      fmt.Sprintf(messageNoConsensus, availability.Format(r.vocab.SlotLabel)),
			Availability: availability,
		}
	}

	date, clock, startsAt := r.materializer.Materialize(selection.Slot)
	proposal := &domain.Proposal{
		Title:        r.vocab.MeetingTitle(),
		Slot:         selection.Slot,
		Date:         date,
		Time:         clock,
		StartsAt:     startsAt,
		Participants: availability.Participants(),
		Support:      selection.Support,
	}

	// Casers hold state, so one per call.
	label := cases.Title(language.English).String(r.vocab.SlotLabel(selection.Slot))

	return domain.Resolution{
		Outcome:      domain.OutcomeScheduled,
		Message:      fmt.Sprintf(messageScheduled, label),
		Proposal:     proposal,
		Availability: availability,
	}
}

package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidVocabulary is returned when a vocabulary fails validation.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// PeriodTerm is the keyword that names a period and the clock time a
// meeting in that period starts at.
type PeriodTerm struct {
	Keyword string `yaml:"keyword" validate:"required"`
	Time    string `yaml:"time" validate:"required,datetime=15:04"`
}

// VocabularyConfig is the editable form of a Vocabulary, as read from YAML.
// DayNames is Monday first; Periods is morning, afternoon, evening.
type VocabularyConfig struct {
	IntentKeywords []string     `yaml:"intent_keywords" validate:"required,min=1,dive,required"`
	DayNames       []string     `yaml:"day_names" validate:"required,len=7,unique,dive,required"`
	Periods        []PeriodTerm `yaml:"periods" validate:"required,len=3,dive"`
	FallbackTime   string       `yaml:"fallback_time" validate:"required,datetime=15:04"`
	MeetingTitle   string       `yaml:"meeting_title" validate:"required"`
}

// DefaultVocabularyConfig returns the built-in English keywords.
func DefaultVocabularyConfig() VocabularyConfig {
	return VocabularyConfig{
		IntentKeywords: []string{"meeting", "schedule", "call", "discuss", "get together", "appointment"},
		DayNames:       []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		Periods: []PeriodTerm{
			{Keyword: "morning", Time: "09:00"},
			{Keyword: "afternoon", Time: "14:00"},
			{Keyword: "evening", Time: "18:00"},
		},
		FallbackTime: "14:00",
		MeetingTitle: "Team Meeting",
	}
}

// Vocabulary is the immutable keyword set the resolver matches against.
// Keywords are stored lower-cased. Copy it freely.
type Vocabulary struct {
	intent   []string
	days     [DaysPerWeek]string
	periods  [PeriodsPerDay]string
	times    [PeriodsPerDay]string
	fallback string
	title    string
}

// NewVocabulary validates cfg and freezes it.
func NewVocabulary(cfg VocabularyConfig) (Vocabulary, error) {
	cfg = normalizeVocabulary(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Vocabulary{}, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}

	seen := make(map[string]struct{}, PeriodsPerDay)
	for _, p := range cfg.Periods {
		if _, dup := seen[p.Keyword]; dup {
			return Vocabulary{}, fmt.Errorf("%w: duplicate period keyword %q", ErrInvalidVocabulary, p.Keyword)
		}
		seen[p.Keyword] = struct{}{}
	}

	v := Vocabulary{
		intent:   append([]string(nil), cfg.IntentKeywords...),
		fallback: cfg.FallbackTime,
		title:    cfg.MeetingTitle,
	}
	copy(v.days[:], cfg.DayNames)
	for i, p := range cfg.Periods {
		v.periods[i] = p.Keyword
		v.times[i] = p.Time
	}
	return v, nil
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	v, err := NewVocabulary(DefaultVocabularyConfig())
	if err != nil {
		panic(err)
	}
	return v
}

func normalizeVocabulary(cfg VocabularyConfig) VocabularyConfig {
	out := VocabularyConfig{
		IntentKeywords: make([]string, len(cfg.IntentKeywords)),
		DayNames:       make([]string, len(cfg.DayNames)),
		Periods:        make([]PeriodTerm, len(cfg.Periods)),
		FallbackTime:   strings.TrimSpace(cfg.FallbackTime),
		MeetingTitle:   strings.TrimSpace(cfg.MeetingTitle),
	}
	for i, k := range cfg.IntentKeywords {
		out.IntentKeywords[i] = strings.ToLower(strings.TrimSpace(k))
	}
	for i, d := range cfg.DayNames {
		out.DayNames[i] = strings.ToLower(strings.TrimSpace(d))
	}
	for i, p := range cfg.Periods {
		out.Periods[i] = PeriodTerm{
			Keyword: strings.ToLower(strings.TrimSpace(p.Keyword)),
			Time:    strings.TrimSpace(p.Time),
		}
	}
	return out
}

// IntentKeywords returns a copy of the intent keywords.
func (v Vocabulary) IntentKeywords() []string {
	return append([]string(nil), v.intent...)
}

// DayName returns the keyword for day.
func (v Vocabulary) DayName(day Weekday) string {
	if !day.IsValid() {
		return ""
	}
	return v.days[day]
}

// PeriodKeyword returns the keyword for period.
func (v Vocabulary) PeriodKeyword(period Period) string {
	if !period.IsValid() {
		return ""
	}
	return v.periods[period]
}

// PeriodTime returns the "15:04" start time for period, or the fallback
// time for an unrecognized period.
func (v Vocabulary) PeriodTime(period Period) string {
	if !period.IsValid() {
		return v.fallback
	}
	return v.times[period]
}

// FallbackTime is used for periods the vocabulary does not know.
func (v Vocabulary) FallbackTime() string {
	return v.fallback
}

// MeetingTitle is the title given to scheduled meetings.
func (v Vocabulary) MeetingTitle() string {
	return v.title
}

// SlotLabel renders slot with this vocabulary's words, e.g. "tuesday afternoon".
func (v Vocabulary) SlotLabel(slot Slot) string {
	return v.DayName(slot.Day) + " " + v.PeriodKeyword(slot.Period)
}

// WithMeetingTitle returns a copy using title.
func (v Vocabulary) WithMeetingTitle(title string) (Vocabulary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Vocabulary{}, fmt.Errorf("%w: empty meeting title", ErrInvalidVocabulary)
	}
	v.intent = append([]string(nil), v.intent...)
	v.title = title
	return v, nil
}

// Config returns the editable form of v.
func (v Vocabulary) Config() VocabularyConfig {
	cfg := VocabularyConfig{
		IntentKeywords: v.IntentKeywords(),
		DayNames:       append([]string(nil), v.days[:]...),
		FallbackTime:   v.fallback,
		MeetingTitle:   v.title,
	}
	for i := range v.periods {
		cfg.Periods = append(cfg.Periods, PeriodTerm{Keyword: v.periods[i], Time: v.times[i]})
	}
	return cfg
}

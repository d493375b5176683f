package cli

import (
	"context"

	chatCommands "github.com/felixgeelhaar/huddle/internal/chat/application/commands"
	chatQueries "github.com/felixgeelhaar/huddle/internal/chat/application/queries"
	meetingCommands "github.com/felixgeelhaar/huddle/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
)

// OutboxDrainer publishes pending events on demand.
type OutboxDrainer interface {
	// IsLocal reports whether events are delivered in-process.
	IsLocal() bool
	DrainOutbox(ctx context.Context) error
}

// App holds the CLI application dependencies.
type App struct {
	// Chat Command Handlers
	PostMessageHandler      *chatCommands.PostMessageHandler
	SeedConversationHandler *chatCommands.SeedConversationHandler

	// Chat Query Handlers
	ListMessagesHandler     *chatQueries.ListMessagesHandler
	ListParticipantsHandler *chatQueries.ListParticipantsHandler

	// Meeting Command Handlers
	ScheduleMeetingHandler *meetingCommands.ScheduleMeetingHandler

	// Meeting Query Handlers
	ListMeetingsHandler        *meetingQueries.ListMeetingsHandler
	GetMeetingHandler          *meetingQueries.GetMeetingHandler
	PreviewAvailabilityHandler *meetingQueries.PreviewAvailabilityHandler

	// Outbox is drained after booking so local runs send confirmations.
	Outbox OutboxDrainer

	// Organizer is the e-mail written into exported invites.
	Organizer string
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	postMessageHandler *chatCommands.PostMessageHandler,
	seedConversationHandler *chatCommands.SeedConversationHandler,
	listMessagesHandler *chatQueries.ListMessagesHandler,
	listParticipantsHandler *chatQueries.ListParticipantsHandler,
	scheduleMeetingHandler *meetingCommands.ScheduleMeetingHandler,
	listMeetingsHandler *meetingQueries.ListMeetingsHandler,
	getMeetingHandler *meetingQueries.GetMeetingHandler,
	previewAvailabilityHandler *meetingQueries.PreviewAvailabilityHandler,
) *App {
	return &App{
		PostMessageHandler:         postMessageHandler,
		SeedConversationHandler:    seedConversationHandler,
		ListMessagesHandler:        listMessagesHandler,
		ListParticipantsHandler:    listParticipantsHandler,
		ScheduleMeetingHandler:     scheduleMeetingHandler,
		ListMeetingsHandler:        listMeetingsHandler,
		GetMeetingHandler:          getMeetingHandler,
		PreviewAvailabilityHandler: previewAvailabilityHandler,
	}
}

// SetOutbox updates the outbox drainer.
func (a *App) SetOutbox(o OutboxDrainer) {
	a.Outbox = o
}

// SetOrganizer updates the invite organizer.
func (a *App) SetOrganizer(email string) {
	a.Organizer = email
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

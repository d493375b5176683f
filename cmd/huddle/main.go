package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	"github.com/felixgeelhaar/huddle/adapter/cli/chat"
	"github.com/felixgeelhaar/huddle/adapter/cli/meeting"
	"github.com/felixgeelhaar/huddle/internal/app"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	logger := observability.NewLogger(observability.DefaultLogConfig())
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = app.NewLogger(cfg, "huddle", os.Stderr)
	cli.SetLogger(logger)
	cli.SetDefaultActor(cfg.Actor)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cliApp := cli.NewApp(
		container.PostMessageHandler,
		container.SeedConversationHandler,
		container.ListMessagesHandler,
		container.ListParticipantsHandler,
		container.ScheduleMeetingHandler,
		container.ListMeetingsHandler,
		container.GetMeetingHandler,
		container.PreviewAvailabilityHandler,
	)
	cliApp.SetOutbox(container)
	cliApp.SetOrganizer(cfg.SMTPFrom)
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(chat.Cmd)
	cli.AddCommand(meeting.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}

package meeting

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingCommands "github.com/felixgeelhaar/huddle/internal/meetings/application/commands"
)

var dryRun bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a meeting from the chat",
	Long: `Read the chat and book the slot a majority of participants are free.
If nobody asked for a meeting, or there is no agreement yet, the reply says so.

Examples:
  huddle meeting schedule
  huddle meeting schedule --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleMeetingHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Scheduling requires database connection.")
			return nil
		}

		result, err := app.ScheduleMeetingHandler.Handle(cmd.Context(), meetingCommands.ScheduleMeetingCommand{
			Actor:  cli.Actor(),
			DryRun: dryRun,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Resolution.Message)
		if cli.Verbose() && result.Resolution.Availability != nil {
			fmt.Fprintf(out, "  Availability: %s\n", result.Resolution.Availability)
		}

		proposal := result.Resolution.Proposal
		if proposal == nil {
			return nil
		}

		fmt.Fprintf(out, "  Title: %s\n", proposal.Title)
		fmt.Fprintf(out, "  When: %s %s\n", proposal.Date, proposal.Time)
		fmt.Fprintf(out, "  Participants: %s\n", strings.Join(proposal.ParticipantEmails(), ", "))

		switch {
		case dryRun:
			fmt.Fprintln(out, "Dry run, nothing was booked.")
		case result.Persisted():
			fmt.Fprintf(out, "  ID: %s\n", result.MeetingID)
			drain(cmd, app)
		case result.PersistErr != nil:
			fmt.Fprintf(out, "Warning: the meeting could not be saved: %v\n", result.PersistErr)
		}
		return nil
	},
}

// drain sends confirmations right away when no worker is running.
func drain(cmd *cobra.Command, app *cli.App) {
	if app.Outbox == nil || !app.Outbox.IsLocal() {
		return
	}
	if err := app.Outbox.DrainOutbox(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: confirmations not sent yet: %v\n", err)
	}
}

func init() {
	scheduleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve without booking")
}

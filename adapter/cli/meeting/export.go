package meeting

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
	notificationsDomain "github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/invite"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/security"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <meeting-id>",
	Short: "Export a meeting as an iCalendar invite",
	Long: `Write a booked meeting as an .ics invite for import into any calendar app.

Examples:
  huddle meeting export 6f1c...            # Export to stdout
  huddle meeting export 6f1c... -o m.ics   # Export to file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetMeetingHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Export requires database connection.")
			return nil
		}

		m, err := getMeeting(cmd, app, args[0])
		if err != nil {
			return err
		}

		ics, err := invite.Render(toConfirmation(m), app.Organizer, time.Now())
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err = cmd.OutOrStdout().Write(ics)
			return err
		}
		written, err := security.SafeWriteFile(exportOutput, ics, 0o600)
		if err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", m.Title, written)
		return nil
	},
}

func toConfirmation(m *meetingQueries.MeetingDTO) notificationsDomain.Confirmation {
	return notificationsDomain.Confirmation{
		MeetingID: m.ID,
		Title:     m.Title,
		Date:      m.Date,
		Time:      m.Time,
		StartsAt:  m.StartsAt,
		Duration:  m.Duration,
		Recipients: lo.Map(m.Attendees, func(a meetingQueries.AttendeeDTO, _ int) notificationsDomain.Recipient {
			return notificationsDomain.Recipient{Name: a.Name, Email: a.Email}
		}),
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
}

package meeting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: "Show a booked meeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetMeetingHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Meeting lookup requires database connection.")
			return nil
		}

		m, err := getMeeting(cmd, app, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", m.Title)
		fmt.Fprintf(out, "  ID: %s\n", m.ID)
		fmt.Fprintf(out, "  Slot: %s\n", m.Slot)
		fmt.Fprintf(out, "  When: %s %s (%s)\n", m.Date, m.Time, m.Duration)
		fmt.Fprintf(out, "  Support: %d of %d\n", m.Support, len(m.Attendees))
		fmt.Fprintln(out, "  Attendees:")
		for _, a := range m.Attendees {
			fmt.Fprintf(out, "    %s <%s>\n", a.Name, a.Email)
		}
		fmt.Fprintf(out, "  Booked: %s\n", m.CreatedAt.Local().Format(time.DateTime))
		return nil
	},
}

func getMeeting(cmd *cobra.Command, app *cli.App, arg string) (*meetingQueries.MeetingDTO, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid meeting id: %w", err)
	}
	return app.GetMeetingHandler.Handle(cmd.Context(), id)
}

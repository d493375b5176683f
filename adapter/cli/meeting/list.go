package meeting

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
)

var upcoming bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List booked meetings",
	Long: `List booked meetings, soonest first.

Examples:
  huddle meeting list
  huddle meeting list --upcoming`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListMeetingsHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Meeting listing requires database connection.")
			return nil
		}

		meetings, err := app.ListMeetingsHandler.Handle(cmd.Context(), meetingQueries.ListMeetingsQuery{Upcoming: upcoming})
		if err != nil {
			return err
		}

		if len(meetings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No meetings booked. Schedule one with: huddle meeting schedule")
			return nil
		}

		table := cli.NewTable(cmd.OutOrStdout(), "ID", "Title", "Date", "Time", "Attendees")
		for _, m := range meetings {
			table.Append([]string{m.ID.String(), m.Title, m.Date, m.Time, attendeeEmails(m)})
		}
		table.Render()
		return nil
	},
}

func attendeeEmails(m meetingQueries.MeetingDTO) string {
	return strings.Join(lo.Map(m.Attendees, func(a meetingQueries.AttendeeDTO, _ int) string {
		return a.Email
	}), ", ")
}

func init() {
	listCmd.Flags().BoolVarP(&upcoming, "upcoming", "u", false, "only meetings that have not started")
}

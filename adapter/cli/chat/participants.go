package chat

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
)

var participantsCmd = &cobra.Command{
	Use:   "participants",
	Short: "List chat participants",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListParticipantsHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Participant listing requires database connection.")
			return nil
		}

		participants, err := app.ListParticipantsHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}

		if len(participants) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No participants yet.")
			return nil
		}

		table := cli.NewTable(cmd.OutOrStdout(), "Name", "Email", "Joined")
		for _, p := range participants {
			table.Append([]string{p.Name, p.Email, p.JoinedAt.Local().Format(time.DateTime)})
		}
		table.Render()
		return nil
	},
}

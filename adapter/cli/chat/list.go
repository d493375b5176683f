package chat

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	chatQueries "github.com/felixgeelhaar/huddle/internal/chat/application/queries"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages",
	Long: `List the conversation oldest first.

Examples:
  huddle chat list
  huddle chat list --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListMessagesHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Message listing requires database connection.")
			return nil
		}

		messages, err := app.ListMessagesHandler.Handle(cmd.Context(), chatQueries.ListMessagesQuery{Limit: listLimit})
		if err != nil {
			return err
		}

		if len(messages) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No messages yet. Post one with: huddle chat post")
			return nil
		}

		table := cli.NewTable(cmd.OutOrStdout(), "ID", "Sent", "From", "Message")
		for _, m := range messages {
			table.Append([]string{
				fmt.Sprint(m.ID),
				m.SentAt.Local().Format(time.DateTime),
				m.Name,
				m.Text,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "show only the last N messages")
}

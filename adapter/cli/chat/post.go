package chat

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	chatCommands "github.com/felixgeelhaar/huddle/internal/chat/application/commands"
)

var (
	postName  string
	postEmail string
)

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Post a message",
	Long: `Post a message to the team chat. The sender is registered on first post.

Examples:
  huddle chat post --name "Alice Johnson" --email alice@email.com "Can we meet Tuesday afternoon?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PostMessageHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Posting requires database connection.")
			return nil
		}

		result, err := app.PostMessageHandler.Handle(cmd.Context(), chatCommands.PostMessageCommand{
			Name:  postName,
			Email: postEmail,
			Text:  strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Posted message #%d as %s\n", result.MessageID, postEmail)
		return nil
	},
}

func init() {
	postCmd.Flags().StringVarP(&postName, "name", "n", "", "sender display name")
	postCmd.Flags().StringVarP(&postEmail, "email", "e", "", "sender e-mail")
	_ = postCmd.MarkFlagRequired("name")
	_ = postCmd.MarkFlagRequired("email")
}

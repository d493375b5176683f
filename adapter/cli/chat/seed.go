package chat

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	chatCommands "github.com/felixgeelhaar/huddle/internal/chat/application/commands"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample conversation",
	Long: `Load a short sample chat between three colleagues. Does nothing when
participants already exist unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SeedConversationHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Seeding requires database connection.")
			return nil
		}

		result, err := app.SeedConversationHandler.Handle(cmd.Context(), chatCommands.SeedConversationCommand{Force: seedForce})
		if err != nil {
			return err
		}

		if !result.Seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Chat already has participants, nothing seeded. Use --force to seed anyway.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d messages.\n", result.Messages)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "seed even when the chat is not empty")
}

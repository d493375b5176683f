package chat

import "github.com/spf13/cobra"

// Cmd is the chat command group.
var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Post to and read the team chat",
	Long:  `Post messages, list the conversation and its participants, or load a sample chat.`,
}

func init() {
	Cmd.AddCommand(postCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(participantsCmd)
	Cmd.AddCommand(seedCmd)
}

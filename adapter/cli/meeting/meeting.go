package meeting

import "github.com/spf13/cobra"

// Cmd is the meeting command group.
var Cmd = &cobra.Command{
	Use:   "meeting",
	Short: "Schedule meetings from the chat",
	Long:  `Resolve the chat into a meeting, preview availability, and list or export booked meetings.`,
}

func init() {
	Cmd.AddCommand(scheduleCmd)
	Cmd.AddCommand(previewCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(exportCmd)
}

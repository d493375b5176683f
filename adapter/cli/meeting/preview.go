package meeting

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/huddle/adapter/cli"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show who is free when",
	Long:  `Show each participant's availability as read from the chat, and how many people each slot suits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PreviewAvailabilityHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Preview requires database connection.")
			return nil
		}

		preview, err := app.PreviewAvailabilityHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(preview.Rows) == 0 {
			fmt.Fprintln(out, "No messages yet.")
			return nil
		}

		table := cli.NewTable(out, "Name", "Email", "Available")
		for _, row := range preview.Rows {
			slots := "-"
			if len(row.Slots) > 0 {
				slots = strings.Join(row.Slots, ", ")
			}
			table.Append([]string{row.Name, row.Email, slots})
		}
		table.Render()

		if len(preview.Candidates) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		support := cli.NewTable(out, "Slot", "Participants")
		for _, slot := range preview.Candidates {
			support.Append([]string{slot, fmt.Sprint(preview.Support[slot])})
		}
		support.Render()
		return nil
	},
}

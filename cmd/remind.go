package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iris-assistant/iris/internal/chatlog"
	"github.com/iris-assistant/iris/internal/config"
	"github.com/iris-assistant/iris/internal/reminder"
)

var remindRecur string

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Manage reminders without going through the assistant",
}

var remindAddCmd = &cobra.Command{
	Use:   "add <name> <text> <due>",
	Short: "Add a reminder; due uses 'YYYY-MM-DD HH:MM' local time",
	Args:  cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		fmt.Println(reminderService().Add(args[0], args[1], args[2], remindRecur))
		return nil
	},
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all reminders",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		rs := reminderService().List()
		if len(rs) == 0 {
			fmt.Println("No reminders set.")
			return nil
		}
		for _, r := range rs {
			line := fmt.Sprintf("  %-16s %s (due %s", r.Name, r.Text, r.DueDate)
			if r.Recur != "" {
				line += fmt.Sprintf(", recurs %q", r.Recur)
			}
			if r.Notified {
				line += ", notified"
			}
			fmt.Println(line + ")")
		}
		return nil
	},
}

var remindRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a reminder by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		fmt.Println(reminderService().Remove(args[0]))
		return nil
	},
}

func init() {
	remindAddCmd.Flags().StringVar(&remindRecur, "recur", "", "Cron expression for recurring reminders, e.g. '0 9 * * *'")
	remindCmd.AddCommand(remindAddCmd)
	remindCmd.AddCommand(remindListCmd)
	remindCmd.AddCommand(remindRemoveCmd)
}

// reminderService opens the chat log directly; reminder CRUD does not need
// the full container.
func reminderService() *reminder.Service {
	return reminder.NewService(chatlog.Open(config.ChatlogPath()))
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/messages"
	"clickhelper/internal/models"
	"clickhelper/internal/ui"
)

var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Set and clear the chat meeting status",
}

var presenceSetCmd = &cobra.Command{
	Use:   "set [room]",
	Short: "Mark yourself as in a meeting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		reply, err := app.router.Dispatch(cmd.Context(), messages.SetMeetingStatus{RoomID: roomArg(args), Title: title})
		if err != nil {
			return err
		}
		rec, _ := reply.(*models.StatusRecord)
		if isJSON() {
			return printJSON(rec)
		}
		if rec == nil {
			fmt.Println(ui.StyleSubtle.Render("Status unchanged. Run with --verbose for details."))
			return nil
		}
		fmt.Println(ui.StyleSuccess.Render(fmt.Sprintf("Status set: %s :%s: %s", rec.Status, rec.Emoji, rec.Text)))
		return nil
	},
}

var presenceClearCmd = &cobra.Command{
	Use:   "clear [room]",
	Short: "Reset the status to online",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := app.router.Dispatch(cmd.Context(), messages.ClearMeetingStatus{RoomID: roomArg(args)})
		if err != nil {
			return err
		}
		rec, _ := reply.(*models.StatusRecord)
		if isJSON() {
			return printJSON(rec)
		}
		if rec == nil {
			fmt.Println(ui.StyleSubtle.Render("No open meeting."))
			return nil
		}
		fmt.Print(ui.StatusTable([]models.StatusRecord{*rec}))
		return nil
	},
}

var presenceHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded meetings, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := app.svc.Presence.History(cmd.Context())
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println(ui.StyleSubtle.Render("No meetings recorded."))
			return nil
		}
		fmt.Print(ui.StatusTable(records))
		return nil
	},
}

var presenceClearHistoryCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Forget all recorded meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to clear the status history without --yes")
		}
		return app.svc.Presence.ClearHistory(cmd.Context())
	},
}

func roomArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(presenceCmd)
	presenceCmd.AddCommand(presenceSetCmd, presenceClearCmd, presenceHistoryCmd, presenceClearHistoryCmd)
	presenceSetCmd.Flags().StringP("title", "t", "", "meeting title, replaces {{title}} in the status text")
	presenceClearHistoryCmd.Flags().Bool("yes", false, "confirm clearing the status history")
}

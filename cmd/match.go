package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/messages"
	"clickhelper/internal/services"
	"clickhelper/internal/ui"
)

var matchCmd = &cobra.Command{
	Use:   "match <url>",
	Short: "Find history entries for a task page",
	Long: `Look up the history for the task shown at <url>.

Entries are matched by task id first, then by the page URL (ignoring query and
fragment), then by title. Pass --page with the captured task JSON to enable
task id and title matching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Set("url", args[0]); err != nil {
			return err
		}
		page, err := pageFromFlags(cmd)
		if err != nil {
			return err
		}
		reply, err := app.router.Dispatch(cmd.Context(), messages.AutoSearch{Page: page})
		if err != nil {
			return err
		}
		result, _ := reply.(services.AutoSearchResult)
		if isJSON() {
			return printJSON(result)
		}
		if result.Task != nil {
			fmt.Println(ui.StyleTitle.Render(result.Task.ID + " " + result.Task.Title))
		}
		if len(result.Matches) == 0 {
			fmt.Println(ui.StyleSubtle.Render("No history for this task."))
			return nil
		}
		fmt.Print(ui.MatchTable(result.Matches))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("page", "", "file with the task JSON served for the tracker page")
	matchCmd.Flags().String("url", "", "")
	_ = matchCmd.Flags().MarkHidden("url")
}

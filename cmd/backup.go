package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/events"
	"clickhelper/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write history, settings, model toggles and templates to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backup, err := app.svc.Backup.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		events.Emit(cmd.Context(), events.TopicBackup, events.NewSuccess("exported to "+args[0]))
		if isJSON() {
			return printJSON(backup)
		}
		fmt.Println(ui.StyleSubtle.Render(fmt.Sprintf("%d templates, %d model toggles", len(backup.Templates), len(backup.ModelSettings))))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored state with a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("import replaces history and settings; pass --yes to continue")
		}
		if _, err := app.svc.Backup.Import(cmd.Context(), args[0]); err != nil {
			return err
		}
		events.Emit(cmd.Context(), events.TopicBackup, events.NewSuccess("imported "+args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	importCmd.Flags().Bool("yes", false, "confirm replacing the stored state")
}

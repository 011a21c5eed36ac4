package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/messages"
	"clickhelper/internal/models"
	"clickhelper/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "Browse and edit generated branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := app.svc.History.List(cmd.Context())
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println(ui.StyleSubtle.Render("History is empty."))
			return nil
		}
		fmt.Print(ui.HistoryTable(entries))
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search history by task id and title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := app.svc.History.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(matches)
		}
		if len(matches) == 0 {
			fmt.Println(ui.StyleSubtle.Render("No matches."))
			return nil
		}
		fmt.Print(ui.MatchTable(matches))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		entries, err := app.svc.History.List(cmd.Context())
		if err != nil {
			return err
		}
		if index >= len(entries) {
			return fmt.Errorf("no entry at index %d", index)
		}
		return printJSON(entries[index])
	},
}

var historySaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a task reference without generating anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := taskFromFlags(cmd)
		if err != nil {
			return err
		}
		_, err = app.router.Dispatch(cmd.Context(), messages.SaveTask{Task: task})
		return reported(err)
	},
}

var historyEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Change fields of an entry; its position and timestamp stay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		var patch models.HistoryPatch
		flags := cmd.Flags()
		for name, field := range map[string]**string{
			"title":       &patch.TaskTitle,
			"description": &patch.TaskDescription,
			"branch":      &patch.BranchName,
			"commit":      &patch.CommitMessage,
			"url":         &patch.SourceURL,
			"mr":          &patch.GitlabMergeRequestURL,
		} {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*field = &v
			}
		}
		if flags.Changed("priority") {
			v, _ := flags.GetString("priority")
			p := models.ParsePriority(v)
			patch.TaskPriority = &p
		}

		reply, err := app.router.Dispatch(cmd.Context(), messages.EditEntry{Index: index, Patch: patch})
		if err != nil {
			return reported(err)
		}
		return printJSON(reply)
	},
}

var historyAttachCmd = &cobra.Command{
	Use:   "attach-mr <task-id> <merge-request-url>",
	Short: "Attach a merge request URL to the newest entry for a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := app.router.Dispatch(cmd.Context(), messages.AttachMergeRequest{TaskID: args[0], URL: args[1]})
		return reported(err)
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"delete"},
	Short:   "Delete an entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		_, err = app.router.Dispatch(cmd.Context(), messages.DeleteEntry{Index: index})
		return reported(err)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}
		if err := app.svc.History.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(ui.StyleSuccess.Render("History cleared."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historySearchCmd, historyShowCmd, historySaveCmd, historyEditCmd, historyAttachCmd, historyRemoveCmd, historyClearCmd)

	addTaskFlags(historySaveCmd)

	historyEditCmd.Flags().String("title", "", "task title")
	historyEditCmd.Flags().String("description", "", "task description")
	historyEditCmd.Flags().String("branch", "", "branch name")
	historyEditCmd.Flags().String("commit", "", "commit message")
	historyEditCmd.Flags().String("priority", "", "Low, Normal, High or Urgent")
	historyEditCmd.Flags().String("url", "", "task page URL")
	historyEditCmd.Flags().String("mr", "", "merge request URL")

	historyClearCmd.Flags().Bool("yes", false, "confirm clearing the history")
}

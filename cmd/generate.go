package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/messages"
	"clickhelper/internal/models"
	"clickhelper/internal/services"
	"clickhelper/internal/ui"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a branch name and commit message for a task",
	Example: `  clickhelper generate --id WDEV-12 --title "Fix login redirect loop"
  clickhelper generate --page task.json --url https://app.clickup.com/t/86c1 --create-branch --repo .`,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := taskFromFlags(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		modelKey, _ := flags.GetString("model")
		noSave, _ := flags.GetBool("no-save")
		branchRules, _ := flags.GetString("branch-rules")
		commitRules, _ := flags.GetString("commit-rules")
		language, _ := flags.GetString("language")

		reply, err := app.router.Dispatch(cmd.Context(), messages.Generate{Request: services.GenerateRequest{
			Task:          task,
			ModelKey:      modelKey,
			SaveToHistory: !noSave,
			Rules: services.GenerationRules{
				BranchRules: branchRules,
				CommitRules: commitRules,
				Language:    language,
			},
		}})
		if err != nil {
			return reported(err)
		}
		result := reply.(*models.GenerationResult)

		var branch *models.BranchInfo
		if create, _ := flags.GetBool("create-branch"); create {
			repo, _ := flags.GetString("repo")
			checkout, _ := flags.GetBool("checkout")
			branch, err = app.svc.Git.CreateBranch(repo, result.BranchName, checkout)
			if err != nil {
				return fmt.Errorf("creating branch %s: %w", result.BranchName, err)
			}
		}

		if isJSON() {
			return printJSON(struct {
				*models.GenerationResult
				Branch *models.BranchInfo `json:"branch,omitempty"`
			}{result, branch})
		}
		fmt.Println(ui.GenerationBox(result))
		if branch != nil {
			fmt.Println(ui.StyleSuccess.Render("Created branch " + branch.Name))
		}
		return nil
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <index>",
	Short: "Estimate the effort of a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		modelKey, _ := cmd.Flags().GetString("model")
		reply, err := app.router.Dispatch(cmd.Context(), messages.EstimateTime{Index: index, ModelKey: modelKey})
		if err != nil {
			return reported(err)
		}
		entry := reply.(*models.HistoryEntry)
		if isJSON() {
			return printJSON(entry.TimeEstimation)
		}
		est := entry.TimeEstimation
		fmt.Println(ui.StyleTitle.Render(entry.TaskID + " " + entry.TaskTitle))
		fmt.Printf("  %s %s\n", ui.StyleLabel.Render("Junior:"), est.Junior)
		fmt.Printf("  %s %s\n", ui.StyleLabel.Render("Mid:"), est.Mid)
		fmt.Printf("  %s %s\n", ui.StyleLabel.Render("Senior:"), est.Senior)
		if est.Reasoning != "" {
			fmt.Println(ui.StyleSubtle.Render("  " + est.Reasoning))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd, estimateCmd)

	addTaskFlags(generateCmd)
	generateCmd.Flags().StringP("model", "m", "", "model key, defaults to the one in settings")
	generateCmd.Flags().Bool("no-save", false, "do not add the result to the history")
	generateCmd.Flags().String("branch-rules", "", "branch naming rules for this run")
	generateCmd.Flags().String("commit-rules", "", "commit message rules for this run")
	generateCmd.Flags().String("language", "", "language of the commit message")
	generateCmd.Flags().Bool("create-branch", false, "create the generated branch in --repo")
	generateCmd.Flags().String("repo", ".", "git repository for --create-branch")
	generateCmd.Flags().Bool("checkout", false, "check out the created branch")

	estimateCmd.Flags().StringP("model", "m", "", "model key, defaults to the one in settings")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickhelper/internal/ui"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Work with branches in a local git repository",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <name-or-history-index>",
	Short: "Create a branch, by name or from a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if index, err := parseIndex(name); err == nil {
			entries, err := app.svc.History.List(cmd.Context())
			if err != nil {
				return err
			}
			if index >= len(entries) {
				return fmt.Errorf("no entry at index %d", index)
			}
			name = entries[index].BranchName
		}
		repo, _ := cmd.Flags().GetString("repo")
		checkout, _ := cmd.Flags().GetBool("checkout")
		info, err := app.svc.Git.CreateBranch(repo, name, checkout)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(info)
		}
		fmt.Println(ui.StyleSuccess.Render("Created branch " + info.Name))
		return nil
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		branches, err := app.svc.Git.ListBranches(repo)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(branches)
		}
		current, _ := app.svc.Git.CurrentBranch(repo)
		for _, b := range branches {
			marker := "  "
			if b.Name == current {
				marker = ui.StylePrimary.Render("* ")
			}
			fmt.Printf("%s%s  %s\n", marker, b.Name, ui.StyleSubtle.Render(b.LastCommitDate.Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var branchCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the checked out branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		name, err := app.svc.Git.CurrentBranch(repo)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd, branchListCmd, branchCurrentCmd)
	branchCmd.PersistentFlags().String("repo", ".", "path inside the git repository")
	branchCreateCmd.Flags().Bool("checkout", false, "check out the new branch")
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:     "clickhelper",
	Short:   "Branch names, commit messages and meeting status for your tracker tasks.",
	Version: version,
	Long: `clickhelper generates git branch names and commit messages for issue-tracker tasks,
remembers what it generated so revisiting a task finds the earlier result, and keeps
your chat status in sync with the meetings you join.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsApp(cmd) {
			return nil
		}
		a, err := openApp(cmd.Context(), viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		err := app.Close()
		app = nil
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var closeErr error
		if app != nil {
			closeErr = app.Close()
		}
		if !alreadyReported(err) {
			printError(err)
		}
		if closeErr != nil {
			printError(closeErr)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.clickhelper.yaml or ./.clickhelper.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine-readable JSON")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// skipsApp reports commands that run without opening the database.
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "__complete":
		return true
	}
	return false
}

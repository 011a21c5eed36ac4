package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clickhelper/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models and switch them on or off",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := app.svc.Models.ListModelGroups()
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(groups)
		}
		for _, g := range groups {
			t := &ui.Table{Headers: []string{"Key", "Model", "RPM", "RPD", "Enabled"}, MaxWidth: 40}
			for _, m := range g.Models {
				t.Rows = append(t.Rows, []string{m.Key, m.DisplayName, limitText(m.RequestsPerMinute), limitText(m.RequestsPerDay), strconv.FormatBool(m.Enabled)})
			}
			fmt.Println(ui.StyleHeader.Render(g.ProviderName))
			fmt.Print(t.Render())
		}
		return nil
	},
}

func modelToggle(enabled bool) *cobra.Command {
	use, short := "enable <model-key>", "Switch a model on"
	if !enabled {
		use, short = "disable <model-key>", "Switch a model off"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider, _ := cmd.Flags().GetBool("provider"); provider {
				updated, err := app.svc.Models.SetProviderEnabled(cmd.Context(), args[0], enabled)
				if err != nil {
					return err
				}
				fmt.Println(ui.StyleSuccess.Render(fmt.Sprintf("Updated %d model(s) of %s.", len(updated), args[0])))
				return nil
			}
			m, err := app.svc.Models.SetModelEnabled(cmd.Context(), args[0], enabled)
			if err != nil {
				return err
			}
			fmt.Println(ui.StyleSuccess.Render(fmt.Sprintf("%s enabled=%t", m.Key, m.Enabled)))
			return nil
		},
	}
}

var modelsUsageCmd = &cobra.Command{
	Use:   "usage <model-key>",
	Short: "Show the rate-limit budget a model has used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := app.svc.Models.GetModel(args[0])
		if err != nil {
			return err
		}
		usage, err := app.svc.RateLimits.Usage(cmd.Context(), m)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(usage)
		}
		fmt.Printf("%s  minute %d/%s  day %d/%s (%s)\n", ui.StyleLabel.Render(m.Key),
			usage.MinuteCount, limitText(usage.MinuteLimit), usage.DayCount, limitText(usage.DayLimit), usage.Day)
		return nil
	},
}

var modelsResetUsageCmd = &cobra.Command{
	Use:   "reset-usage <model-key>",
	Short: "Forget the recorded requests of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.svc.RateLimits.Reset(cmd.Context(), args[0])
	},
}

func limitText(n int) string {
	if n <= 0 {
		return "∞"
	}
	return strconv.Itoa(n)
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	enable, disable := modelToggle(true), modelToggle(false)
	for _, c := range []*cobra.Command{enable, disable} {
		c.Flags().Bool("provider", false, "treat the argument as a provider id and toggle all its models")
	}
	modelsCmd.AddCommand(enable, disable, modelsUsageCmd, modelsResetUsageCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"clickhelper/internal/models"
	"clickhelper/internal/ui"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Manage message templates for sharing a generated branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.svc.Templates.ListTemplates(cmd.Context())
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(list)
		}
		t := &ui.Table{Headers: []string{"ID", "Name", "Content"}, MaxWidth: 60}
		for _, tpl := range list {
			t.Rows = append(t.Rows, []string{strconv.FormatUint(uint64(tpl.ID), 10), tpl.Name, tpl.Content})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a template from --content or --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := templateContent(cmd)
		if err != nil {
			return err
		}
		tpl, err := app.svc.Templates.CreateTemplate(cmd.Context(), &models.Template{Name: args[0], Content: content})
		if err != nil {
			return err
		}
		fmt.Println(ui.StyleSuccess.Render(fmt.Sprintf("Created template %d (%s).", tpl.ID, tpl.Name)))
		return nil
	},
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the content of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTemplateID(args[0])
		if err != nil {
			return err
		}
		tpl, err := app.svc.Templates.GetTemplate(cmd.Context(), id)
		if err != nil {
			return err
		}
		content, err := templateContent(cmd)
		if err != nil {
			return err
		}
		tpl.Content = content
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			tpl.Name = name
		}
		_, err = app.svc.Templates.UpdateTemplate(cmd.Context(), tpl)
		return err
	},
}

var templatesRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTemplateID(args[0])
		if err != nil {
			return err
		}
		return app.svc.Templates.DeleteTemplate(cmd.Context(), id)
	},
}

var templatesRenderCmd = &cobra.Command{
	Use:   "render <id> <history-index>",
	Short: "Render a template for a history entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTemplateID(args[0])
		if err != nil {
			return err
		}
		index, err := parseIndex(args[1])
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
		out, err := app.svc.Templates.Render(cmd.Context(), id, entries[index])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func templateContent(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		raw, err := afero.ReadFile(app.fs, path)
		if err != nil {
			return "", fmt.Errorf("reading template file: %w", err)
		}
		return string(raw), nil
	}
	content, _ := cmd.Flags().GetString("content")
	if content == "" {
		return "", errors.New("pass the template with --content or --file")
	}
	return content, nil
}

func parseTemplateID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid template id %q", arg)
	}
	return uint(id), nil
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesAddCmd, templatesUpdateCmd, templatesRemoveCmd, templatesRenderCmd)
	for _, c := range []*cobra.Command{templatesAddCmd, templatesUpdateCmd} {
		c.Flags().String("content", "", "template text, e.g. \"Please review {{.TaskID}}: {{.BranchName}}\"")
		c.Flags().String("file", "", "read the template text from a file")
	}
	templatesUpdateCmd.Flags().String("name", "", "rename the template")
}

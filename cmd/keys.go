package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clickhelper/internal/ui"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys and the chat token in the keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := app.svc.Keys.ListApiKeys()
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(keys)
		}
		if len(keys) == 0 {
			fmt.Println(ui.StyleSubtle.Render("No API keys stored."))
			return nil
		}
		for _, k := range keys {
			fmt.Printf("%s  %s\n", ui.StyleLabel.Render(k["provider"]), ui.StyleSubtle.Render(k["description"]))
		}
		return nil
	},
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key (from --value or the first line of stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := secretFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := app.svc.Keys.StoreApiKey(args[0], []byte(secret)); err != nil {
			return err
		}
		fmt.Println(ui.StyleSuccess.Render("Stored API key for " + args[0] + "."))
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:     "rm <provider>",
	Aliases: []string{"delete"},
	Short:   "Delete an API key",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.svc.Keys.DeleteApiKey(args[0])
	},
}

var chatTokenCmd = &cobra.Command{
	Use:   "chat-token",
	Short: "Manage the chat personal access token",
}

var chatTokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the chat token (from --value or the first line of stdin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := secretFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := app.svc.Keys.StoreChatToken(secret); err != nil {
			return err
		}
		fmt.Println(ui.StyleSuccess.Render("Stored chat token."))
		return nil
	},
}

var chatTokenDeleteCmd = &cobra.Command{
	Use:     "rm",
	Aliases: []string{"delete"},
	Short:   "Delete the chat token",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.svc.Keys.DeleteChatToken()
	},
}

// secretFromFlags prefers --value and otherwise reads one line from stdin so the
// secret stays out of shell history.
func secretFromFlags(cmd *cobra.Command) (string, error) {
	if v, _ := cmd.Flags().GetString("value"); v != "" {
		return strings.TrimSpace(v), nil
	}
	fmt.Fprint(os.Stderr, "Paste the secret and press enter: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("secret cannot be empty")
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd, keysDeleteCmd, chatTokenCmd)
	chatTokenCmd.AddCommand(chatTokenSetCmd, chatTokenDeleteCmd)

	keysSetCmd.Flags().String("value", "", "the API key")
	chatTokenSetCmd.Flags().String("value", "", "the token")
}

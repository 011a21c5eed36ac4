package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clickhelper/internal/models"
	"clickhelper/internal/services"
	"clickhelper/internal/ui"
	"clickhelper/internal/utils"
)

const settingsSaveKey = "settings"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := app.svc.Settings.Get(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change one or more settings",
	Long: `Change settings by dotted key. Known keys:

  generation.modelKey  generation.branchRules  generation.commitRules
  generation.language  generation.temperature  generation.maxOutputTokens
  chat.serverUrl       chat.userId
  presence.enabled     presence.filteredRooms (comma separated, or @file
                       with one room per line)
  presence.default.availability|emoji|text
  presence.room.<id>.availability|emoji|text

An empty value clears a text field. Setting presence.room.<id> to an empty
value removes the override for that room.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := app.svc.Settings.Get(cmd.Context())
		if err != nil {
			return err
		}
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			value, err := expandFileValue(strings.TrimSpace(value))
			if err != nil {
				return err
			}
			if err := applySetting(settings, strings.TrimSpace(key), value); err != nil {
				return err
			}
		}
		if err := services.ValidateSettings(settings); err != nil {
			return err
		}
		// Writes go through the auto-saver so repeated edits coalesce; Close flushes them.
		app.svc.AutoSave.Schedule(cmd.Context(), settingsSaveKey, func(ctx context.Context) error {
			_, err := app.svc.Settings.Update(ctx, settings)
			return err
		})
		fmt.Println(ui.StyleSuccess.Render(fmt.Sprintf("Updated %d setting(s).", len(args))))
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := app.svc.Settings.Reset(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(settings)
	},
}

func applySetting(s *models.Settings, key, value string) error {
	switch key {
	case "generation.modelKey":
		s.Generation.ModelKey = value
	case "generation.branchRules":
		s.Generation.BranchRules = value
	case "generation.commitRules":
		s.Generation.CommitRules = value
	case "generation.language":
		s.Generation.Language = value
	case "generation.temperature":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.Generation.Temperature = float32(f)
	case "generation.maxOutputTokens":
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.Generation.MaxOutputTokens = int32(n)
	case "chat.serverUrl":
		s.Chat.ServerURL = value
	case "chat.userId":
		s.Chat.UserID = value
	case "presence.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.Presence.Enabled = b
	case "presence.filteredRooms":
		s.Presence.FilteredRooms = splitList(value)
	default:
		if field, ok := strings.CutPrefix(key, "presence.default."); ok {
			return setOverrideField(&s.Presence.Default, field, value)
		}
		if rest, ok := strings.CutPrefix(key, "presence.room."); ok {
			return setRoomOverride(&s.Presence, rest, value)
		}
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func setRoomOverride(p *models.PresenceSettings, rest, value string) error {
	i := strings.LastIndexByte(rest, '.')
	if i < 0 {
		if value != "" {
			return errors.New("a room override needs a field: presence.room.<id>.availability|emoji|text")
		}
		delete(p.RoomOverrides, rest)
		return nil
	}
	room, field := rest[:i], rest[i+1:]
	if p.RoomOverrides == nil {
		p.RoomOverrides = map[string]models.StatusOverride{}
	}
	o := p.RoomOverrides[room]
	if err := setOverrideField(&o, field, value); err != nil {
		return err
	}
	if o == (models.StatusOverride{}) {
		delete(p.RoomOverrides, room)
		return nil
	}
	p.RoomOverrides[room] = o
	return nil
}

func setOverrideField(o *models.StatusOverride, field, value string) error {
	switch field {
	case "availability":
		o.Availability = value
	case "emoji":
		o.Emoji = strings.Trim(value, ":")
	case "text":
		o.Text = value
	default:
		return fmt.Errorf("unknown status field %q", field)
	}
	return nil
}

// expandFileValue turns "@path" into the comma-joined non-comment lines of path.
func expandFileValue(value string) (string, error) {
	path, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}
	lines, err := utils.ReadNonEmptyLines(app.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.Join(lines, ","), nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd, settingsResetCmd)
}

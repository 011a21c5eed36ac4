package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"clickhelper/internal/services"
	"clickhelper/internal/ui"
)

func isJSON() bool {
	return viper.GetBool("json")
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

// printError writes err and, when one exists, what the user can do about it.
func printError(err error) {
	fmt.Fprintln(os.Stderr, ui.StyleError.Render("Error: ")+err.Error())
	if hint := services.Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, ui.StyleSubtle.Render("  "+hint))
	}
}

func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q: expected a non-negative number", arg)
	}
	return i, nil
}

// reportedError marks an error the router already showed as a notification.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func alreadyReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/criteo/kubetoken/internal/client/errors"
	"github.com/criteo/kubetoken/internal/client/output"
	"github.com/criteo/kubetoken/internal/tokenprovider"
)

var flagShow bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the resolved credential",
	Long: `Resolve and print the Authorization value.

When standard output is a terminal the value is masked unless --show is given.
Exits with code 3 when no credential is available.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

// tokenResult is the JSON shape of the token command
type tokenResult struct {
	Token  string `json:"token,omitempty"`
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
}

func runToken(cmd *cobra.Command, args []string) error {
	resolved := newProvider(logger).Resolve(environment())

	result := tokenResult{
		Source: resolved.Source.String(),
		Path:   resolved.Path,
	}

	if !resolved.Present {
		message := "no token available"
		if resolved.Err != nil {
			message = fmt.Sprintf("%s: %v", message, resolved.Err)
		}
		if flagJSON {
			if err := output.JSON(result, fmt.Errorf("%s", message)); err != nil {
				return err
			}
			return errors.WithCode(errors.ExitNoToken, "")
		}
		return errors.WithCode(errors.ExitNoToken, message)
	}

	value := strings.TrimRight(resolved.Value, "\r\n")
	if !flagShow && isTerminal() {
		value = tokenprovider.MaskToken(value)
	}
	result.Token = value

	if flagJSON {
		return output.JSON(result, nil)
	}

	fmt.Fprintln(output.Stdout, value)
	return nil
}

func init() {
	tokenCmd.Flags().BoolVar(&flagShow, "show", false, "Print the token even when stdout is a terminal")
	rootCmd.AddCommand(tokenCmd)
}

package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/criteo/kubetoken/internal/client"
	"github.com/criteo/kubetoken/internal/client/errors"
	"github.com/criteo/kubetoken/internal/client/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check whether the API accepts the resolved credential",
	Long: `Call the API probe endpoint (api.probe_path) with the resolved Authorization
header and report whether it was accepted.

API URL precedence: --url flag > KUBETOKEN_API_URL env var > config file.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	serverURL := strings.TrimRight(cfg.API.URL, "/")
	if serverURL == "" {
		return errors.WithCode(errors.ExitInvalidArguments, "no API URL configured. Use --url flag, KUBETOKEN_API_URL env var, or api.url in the config file")
	}

	provider := newProvider(logger)
	c := client.NewClient(serverURL, provider, cfg.API.Timeout, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.Get(ctx, cfg.API.ProbePath)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	authenticated := resp.StatusCode >= 200 && resp.StatusCode < 300

	if flagJSON {
		if err := output.JSON(map[string]interface{}{
			"server":        serverURL,
			"path":          cfg.API.ProbePath,
			"status":        resp.StatusCode,
			"authenticated": authenticated,
		}, nil); err != nil {
			return err
		}
	} else {
		switch {
		case authenticated:
			output.Success("Authenticated to %s", serverURL)
		case resp.StatusCode == http.StatusUnauthorized:
			output.Failure("Not authenticated to %s", serverURL)
			fmt.Fprintln(output.Stderr, "Run 'kubetoken locate' to see which credential source was used")
		default:
			output.Failure("Server returned status %d", resp.StatusCode)
		}
	}

	if code := errors.MapHTTPStatusToExitCode(resp.StatusCode); code != errors.ExitSuccess {
		return errors.WithCode(code, "")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

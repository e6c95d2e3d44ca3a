package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criteo/kubetoken/internal/client/output"
)

// Version is set at build time with -ldflags "-X ..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kubetoken version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagJSON {
			return output.JSON(map[string]string{"version": Version}, nil)
		}
		fmt.Fprintf(output.Stdout, "kubetoken version %s\n", Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

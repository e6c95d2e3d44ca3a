package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/criteo/kubetoken/internal/client/output"
	"github.com/criteo/kubetoken/internal/kubeconfig"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show where credentials are looked up",
	Long: `Evaluate each discovery step and show which one supplies the credential.

Steps are listed in precedence order. The service account step only applies
when neither kubeconfig step found a file.`,
	Args: cobra.NoArgs,
	RunE: runLocate,
}

// locateStep is one row of the locate report
type locateStep struct {
	Step     string `json:"step" yaml:"step"`
	Path     string `json:"path" yaml:"path"`
	Exists   bool   `json:"exists" yaml:"exists"`
	Selected bool   `json:"selected" yaml:"selected"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	locator := kubeconfig.NewLocator(kubeconfig.NewPathResolver(filesystem, logger), logger)

	var steps []locateStep
	for _, s := range locator.Trace(environment()) {
		steps = append(steps, locateStep{
			Step:     s.Provenance.String(),
			Path:     s.Path,
			Exists:   s.Exists,
			Selected: s.Selected,
		})
	}

	if flagJSON {
		return output.JSON(steps, nil)
	}

	tw := output.NewTable("STEP", "PATH", "EXISTS", "SELECTED")
	for _, s := range steps {
		selected := ""
		if s.Selected {
			selected = "*"
		}
		tw.Row(s.Step, s.Path, strconv.FormatBool(s.Exists), selected)
	}
	return tw.Render()
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

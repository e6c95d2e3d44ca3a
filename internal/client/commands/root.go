package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/criteo/kubetoken/internal/client/errors"
	"github.com/criteo/kubetoken/internal/config"
	"github.com/criteo/kubetoken/internal/kubeconfig"
	"github.com/criteo/kubetoken/internal/logging"
	"github.com/criteo/kubetoken/internal/tokenprovider"
)

var (
	// Global flags
	flagConfig  string
	flagURL     string
	flagJSON    bool
	flagVerbose bool
	flagTimeout time.Duration
)

// Resolved by setup before any subcommand runs
var (
	cfg    *config.Config
	logger *slog.Logger
)

// Replaced in tests
var (
	filesystem afero.Fs = afero.NewOsFs()

	environment = kubeconfig.FromProcess

	newProvider = func(logger *slog.Logger) *tokenprovider.Provider {
		return tokenprovider.New(
			tokenprovider.WithFs(filesystem),
			tokenprovider.WithLogger(logger),
			tokenprovider.WithEnvironment(environment),
		)
	}

	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kubetoken",
	Short: "Resolve an API bearer token from kubeconfig or a service account",
	Long: `kubetoken resolves the Authorization value used to call a remote API.

Discovery order:
- the first file listed in $KUBECONFIG
- ~/.kube/config (on Windows also HOMEDRIVE+HOMEPATH, then USERPROFILE)
- the mounted service account token, only when no kubeconfig exists

A token from a kubeconfig is printed as "Bearer <token>". A service account
token is printed as-is.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to configuration file (or use KUBETOKEN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "API URL (or use KUBETOKEN_API_URL env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "HTTP request timeout")
}

// setup loads configuration and builds the logger shared by subcommands
func setup(cmd *cobra.Command, args []string) error {
	// Check for config file from environment variable if not provided via flag
	configFile := flagConfig
	if configFile == "" {
		configFile = os.Getenv(config.ConfigFileEnvVar)
	}

	_, v, err := config.Load(configFile)
	if err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err.Error())
	}

	// Flags override environment and file values when set
	if err := v.BindPFlag("api.url", cmd.Flags().Lookup("url")); err != nil {
		return err
	}
	if err := v.BindPFlag("api.timeout", cmd.Flags().Lookup("timeout")); err != nil {
		return err
	}

	loaded, err := config.LoadWithViper(v)
	if err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, err.Error())
	}
	if flagVerbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return errors.WithCode(errors.ExitInvalidArguments, "invalid configuration: "+err.Error())
	}

	cfg = loaded
	logger = logging.NewLogger(cfg.LoggingOptions())
	return nil
}

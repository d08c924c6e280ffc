// Meshcfg configures Meshtastic radios through the meshtastic command-line
// tool.
//
// It reads the device configuration, computes the minimal set of writes
// between that configuration and an edited one, applies them section by
// section, and verifies the result by reading the device back.
//
// Usage:
//
//	meshcfg [command] [flags]
//
// See 'meshcfg --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/muurk/meshcfg/internal/config"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/ui"
	"github.com/muurk/meshcfg/internal/version"
)

// Global flags
var (
	portFlag     string
	hostFlag     string
	toolFlag     string
	logLevelFlag string
	noColorFlag  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meshcfg",
	Short: "Meshtastic radio configuration utility",
	Long: `Configure Meshtastic radios from the command line.

meshcfg reads a node's configuration with the meshtastic tool, shows what
an edited configuration would change, and writes only those changes,
section by section. After a write the node is read back and anything it
did not take is reported.

The meshtastic tool must be installed (pip install meshtastic). Set
MESHTASTIC_CLI or --tool when it is not on PATH.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: `  # List attached radios and network nodes
  meshcfg detect

  # Save the current configuration, edit it, preview and apply
  meshcfg show --format yaml --out node.yaml
  meshcfg diff --edited node.yaml
  meshcfg apply --edited node.yaml

  # Change a single setting
  meshcfg set lora --channel-num 20`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevelFlag); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		if noColorFlag || os.Getenv("NO_COLOR") != "" {
			ui.DisableColor()
		}
		if _, err := config.LoadRegistry(); err != nil {
			logging.Warn("could not load config; using defaults")
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "Serial port of the radio (skips auto-detection)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Network node address instead of a serial port")
	rootCmd.PersistentFlags().StringVar(&toolFlag, "tool", "", "Path to the meshtastic executable")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error); default from "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.MarkFlagsMutuallyExclusive("port", "host")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("meshcfg %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}

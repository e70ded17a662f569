// Package cmd wires the mousemapper binary's subcommands through cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mousemapper/mousemapper/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	rootCmd = &cobra.Command{
		Use:   "mousemapper",
		Short: "A Linux input remapper and macro engine",
		Long: `mousemapper grabs a source input device exclusively, remaps its keys and
buttons through a configurable profile, and replays the result through a
virtual uinput device, with optional macros (repeat-on-hold, sequence,
and toggle) bound to any input.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR (default INFO)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			logger.SetLevel(level)
		}
	}

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(configCmd)
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

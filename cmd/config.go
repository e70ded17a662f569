package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mousemapper/mousemapper/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the mousemapper configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file with one empty profile",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path mousemapper would use",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	config.Set(&config.Default)
	if err := config.Save(); err != nil {
		exitError("failed to write config: %v", err)
		return nil
	}
	fmt.Printf("wrote starter config to %s\n", config.GetConfigPath())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.GetConfigPath())
	return nil
}

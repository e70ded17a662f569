package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mousemapper/mousemapper/internal/device"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List candidate source input devices",
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	candidates, err := device.ListCandidates()
	if err != nil {
		exitError("failed to list input devices: %v", err)
		return nil
	}
	if len(candidates) == 0 {
		fmt.Println("no input devices found (are you in the input group / running as root?)")
		return nil
	}
	for _, c := range candidates {
		fmt.Printf("%-24s  %04x:%04x  %s\n", c.Path, c.Vendor, c.Product, c.Name)
	}
	return nil
}

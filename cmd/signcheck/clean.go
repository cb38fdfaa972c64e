package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"signcheck/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the signcheck disk cache",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cache, err := driver.OpenDiskCache("signcheck")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear disk cache: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, "disk cache cleared")
		return nil
	},
}

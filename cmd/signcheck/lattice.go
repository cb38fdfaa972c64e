package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"signcheck/internal/ui"
)

var latticeCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Print the signedness qualifier hierarchy",
	Long:  `Print the qualifiers level by level, which qualifier is a subtype of which, and the join of every pair`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		useColor, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, ui.RenderLattice(useColor))
		return err
	},
}

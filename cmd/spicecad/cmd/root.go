package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "spicecad",
	Short: "spicecad - circuit netlist translation tools",
	Long: `spicecad converts between schematic circuit descriptions and
SPICE-family netlist text:
  - generic .cir/.spice netlists (import and export)
  - LTspice .asc schematics (import)

Examples:
  spicecad info amp.cir              # Summarize a netlist
  spicecad convert filter.asc        # LTspice schematic -> netlist on stdout
  spicecad convert rc.cir -o out.cir # Re-emit a normalized netlist`,
	Version: "0.3.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

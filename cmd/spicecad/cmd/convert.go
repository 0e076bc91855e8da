package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"spicecad/pkg/asc"
	"spicecad/pkg/graph"
	"spicecad/pkg/netlist"
	"spicecad/pkg/param"
)

var (
	convertOut      string
	convertAnalysis string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a schematic or netlist to netlist text",
	Long: `Read a circuit file (.asc LTspice schematic, or .cir/.spice/.net
netlist) and emit an equivalent SPICE netlist.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "output file (default stdout)")
	convertCmd.Flags().StringVarP(&convertAnalysis, "analysis", "a", "",
		`analysis directive overriding the input, e.g. "op" or "tran 1m 10m"`)
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ckt, an, params, warnings, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if convertAnalysis != "" {
		directive := convertAnalysis
		if !strings.HasPrefix(directive, ".") {
			directive = "." + directive
		}
		an = &netlist.Analysis{}
		handled, err := netlist.ApplyDirective(an, directive)
		if err != nil {
			return fmt.Errorf("bad analysis directive: %w", err)
		}
		if !handled {
			return fmt.Errorf("unknown analysis directive %q", directive)
		}
	}

	text, err := netlist.Generate(ckt, an, params)
	if err != nil {
		return fmt.Errorf("generating netlist: %w", err)
	}

	if convertOut == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(convertOut, []byte(text), 0o644)
}

// loadCircuit dispatches on the file extension.
func loadCircuit(path string) (*graph.Circuit, *netlist.Analysis, *param.Processor, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	text := string(data)

	if strings.EqualFold(filepath.Ext(path), ".asc") {
		imp := asc.NewImporter()
		ckt, an, warnings, err := imp.Import(text)
		if err != nil {
			return nil, nil, nil, warnings, fmt.Errorf("importing %s: %w", path, err)
		}
		return ckt, an, imp.Params(), warnings, nil
	}

	imp := netlist.NewImporter()
	ckt, an, err := imp.Import(text)
	if err != nil {
		return nil, nil, nil, imp.Warnings(), fmt.Errorf("importing %s: %w", path, err)
	}
	return ckt, an, imp.Params(), imp.Warnings(), nil
}

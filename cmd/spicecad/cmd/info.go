package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show circuit summary",
	Long:  `Display components, electrical nodes and the analysis directive of a circuit file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ckt, an, _, warnings, err := loadCircuit(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Circuit: %s\n", args[0])
	if ckt.Title != "" {
		fmt.Printf("Title: %s\n", ckt.Title)
	}
	fmt.Printf("Components: %d\n", len(ckt.Components))
	for _, id := range ckt.SortedIDs() {
		comp := ckt.Components[id]
		fmt.Printf("  %-10s %-14s %s\n", id, comp.Type, comp.Value)
	}

	fmt.Printf("Nodes: %d\n", len(ckt.Nodes))
	for _, node := range ckt.Nodes {
		terms := make([]string, 0, len(node.Terminals))
		for _, t := range node.Terminals {
			terms = append(terms, t.String())
		}
		fmt.Printf("  %-10s %s\n", node.Label(), strings.Join(terms, " "))
	}

	if an != nil {
		fmt.Printf("Analysis: %s\n", an.Type)
	}
	if verbose {
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
	}
	return nil
}

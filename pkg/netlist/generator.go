package netlist

import (
	"fmt"
	"sort"
	"strings"

	"spicecad/internal/models"
	"spicecad/pkg/catalog"
	"spicecad/pkg/graph"
	"spicecad/pkg/param"
)

// Generate renders the circuit as SPICE netlist text. It is a pure
// function of its inputs; the graph must already satisfy the data-model
// invariants. Components are emitted sorted by ID so output is
// reproducible.
func Generate(ckt *graph.Circuit, an *Analysis, params *param.Processor) (string, error) {
	ckt.RebuildNodes()

	var b strings.Builder
	title := ckt.Title
	if title == "" {
		title = "Untitled Circuit"
	}
	b.WriteString(title + "\n")

	if params != nil {
		for _, line := range params.EmitDirectives() {
			b.WriteString(line + "\n")
		}
	}

	subckts, modelCards, err := collectDefinitions(ckt)
	if err != nil {
		return "", err
	}
	for _, body := range subckts {
		b.WriteString(body + "\n")
	}

	for _, id := range ckt.SortedIDs() {
		comp := ckt.Components[id]
		if comp.Type == catalog.Ground {
			continue
		}
		lines, err := componentCards(ckt, comp)
		if err != nil {
			return "", err
		}
		for _, line := range lines {
			b.WriteString(line + "\n")
		}
	}

	for _, card := range modelCards {
		b.WriteString(card + "\n")
	}

	if an != nil {
		for _, line := range an.Directives() {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(".end\n")
	return b.String(), nil
}

// collectDefinitions gathers subcircuit bodies and .model cards, each
// deduplicated by name, in sorted order.
func collectDefinitions(ckt *graph.Circuit) ([]string, []string, error) {
	subckts := make(map[string]string)
	modelTypes := make(map[string]string)

	for _, id := range ckt.SortedIDs() {
		comp := ckt.Components[id]
		switch comp.Type {
		case catalog.OpAmp:
			name, body := models.OpAmpModel(comp.Value)
			subckts[name] = body
		case catalog.Subcircuit:
			name := comp.SubcircuitName
			if name == "" {
				return nil, nil, fmt.Errorf("subcircuit %s has no name", comp.ID)
			}
			if comp.SubcircuitDefinition != "" {
				subckts[name] = strings.TrimRight(comp.SubcircuitDefinition, "\n")
			} else if def, ok := ckt.SubcircuitDefs[name]; ok {
				subckts[name] = strings.TrimRight(def, "\n")
			}
		default:
			if mt := catalog.ModelType(comp.Type); mt != "" && comp.Value != "" {
				modelTypes[comp.Value] = mt
			}
		}
	}

	subNames := make([]string, 0, len(subckts))
	for name := range subckts {
		subNames = append(subNames, name)
	}
	sort.Strings(subNames)
	bodies := make([]string, 0, len(subNames))
	for _, name := range subNames {
		bodies = append(bodies, subckts[name])
	}

	modelNames := make([]string, 0, len(modelTypes))
	for name := range modelTypes {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)
	cards := make([]string, 0, len(modelNames))
	for _, name := range modelNames {
		cards = append(cards, fmt.Sprintf(".model %s %s", name, modelTypes[name]))
	}

	return bodies, cards, nil
}

// componentCards emits the card line(s) for one component.
func componentCards(ckt *graph.Circuit, comp *graph.Component) ([]string, error) {
	nodes, err := terminalLabels(ckt, comp)
	if err != nil {
		return nil, err
	}
	nodes = catalog.ToSpiceOrder(comp.Type, nodes)
	name := cardName(comp)
	nodeStr := strings.Join(nodes, " ")

	switch comp.Type {
	case catalog.Transformer:
		return transformerCards(comp, nodes)

	case catalog.WaveformSource:
		wtype, wparams := comp.WaveformType, comp.WaveformParams
		if wtype == "" {
			if t, p, ok := DetectWaveform(comp.Value); ok {
				wtype, wparams = t, p
			}
		}
		return []string{fmt.Sprintf("%s %s %s", name, nodeStr,
			FormatWaveform(wtype, wparams))}, nil

	case catalog.OpAmp:
		model, _ := models.OpAmpModel(comp.Value)
		return []string{fmt.Sprintf("%s %s %s", name, nodeStr, model)}, nil

	case catalog.Subcircuit:
		return []string{fmt.Sprintf("%s %s %s", name, nodeStr, comp.SubcircuitName)}, nil

	case catalog.Capacitor, catalog.Inductor:
		card := fmt.Sprintf("%s %s %s", name, nodeStr, comp.Value)
		if comp.InitialCondition != "" {
			card += " IC=" + comp.InitialCondition
		}
		return []string{card}, nil

	default:
		return []string{fmt.Sprintf("%s %s %s", name, nodeStr, comp.Value)}, nil
	}
}

// transformerCards expands a transformer into primary and secondary
// inductors plus the coupling statement. The value is either the
// coupling coefficient alone ("0.99") or "k Lp Ls".
func transformerCards(comp *graph.Component, nodes []string) ([]string, error) {
	coupling, lp, ls := "1", "1m", "1m"
	fields := strings.Fields(comp.Value)
	if len(fields) > 0 && fields[0] != "" {
		coupling = fields[0]
	}
	if len(fields) > 2 {
		lp, ls = fields[1], fields[2]
	}
	if len(nodes) != 4 {
		return nil, fmt.Errorf("transformer %s needs 4 nodes, has %d", comp.ID, len(nodes))
	}
	prim := fmt.Sprintf("L_prim_%s %s %s %s", comp.ID, nodes[0], nodes[1], lp)
	sec := fmt.Sprintf("L_sec_%s %s %s %s", comp.ID, nodes[2], nodes[3], ls)
	k := fmt.Sprintf("K_%s L_prim_%s L_sec_%s %s", comp.ID, comp.ID, comp.ID, coupling)
	return []string{prim, sec, k}, nil
}

// terminalLabels resolves each schematic terminal to its node's
// SPICE-visible label, in schematic pin order.
func terminalLabels(ckt *graph.Circuit, comp *graph.Component) ([]string, error) {
	n := comp.Terminals()
	labels := make([]string, n)
	for t := 0; t < n; t++ {
		idx := ckt.NodeFor(comp.ID, t)
		if idx < 0 {
			return nil, fmt.Errorf("terminal %s.%d has no node; RebuildNodes not run?", comp.ID, t)
		}
		labels[t] = ckt.Nodes[idx].Label()
	}
	return labels, nil
}

// cardName prepends the SPICE prefix letter unless the ID already
// starts with it.
func cardName(comp *graph.Component) string {
	prefix := catalog.Prefix(comp.Type)
	if prefix == "" {
		return comp.ID
	}
	if strings.HasPrefix(strings.ToUpper(comp.ID), prefix) {
		return comp.ID
	}
	return prefix + comp.ID
}

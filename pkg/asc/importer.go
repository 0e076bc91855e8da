// Package asc imports LTspice .asc schematic files.
package asc

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"spicecad/pkg/catalog"
	"spicecad/pkg/graph"
	"spicecad/pkg/netlist"
	"spicecad/pkg/param"
)

type symbolRec struct {
	name   string
	x, y   int
	orient string
	inst   string
	value  string
	value2 string
	model  string
}

type wireRec struct {
	x1, y1, x2, y2 int
}

type flagRec struct {
	x, y  int
	label string
}

// Importer converts .asc schematic text into a circuit graph.
type Importer struct {
	params *param.Processor
}

func NewImporter() *Importer {
	return &Importer{params: param.NewProcessor()}
}

// Params returns the .param definitions collected from TEXT directives.
func (imp *Importer) Params() *param.Processor {
	return imp.params
}

// Import is shorthand for NewImporter().Import.
func Import(text string) (*graph.Circuit, *netlist.Analysis, []string, error) {
	return NewImporter().Import(text)
}

// Import parses .asc text into a circuit graph. Unsupported symbols are
// skipped with a warning; the whole import fails only when the text
// contains no symbols at all.
func (imp *Importer) Import(text string) (*graph.Circuit, *netlist.Analysis, []string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil, &netlist.ParseError{Reason: "empty input"}
	}

	var (
		symbols  []*symbolRec
		wires    []wireRec
		flags    []flagRec
		warnings []string
	)
	an := &netlist.Analysis{}
	analysisSeen := false
	params := imp.params

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "Version", "SHEET":
			// header records, nothing to keep

		case "WIRE":
			if len(fields) < 5 {
				warnings = append(warnings, fmt.Sprintf("malformed WIRE record skipped: %s", line))
				continue
			}
			c, err := atoiAll(fields[1:5])
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("malformed WIRE record skipped: %s", line))
				continue
			}
			wires = append(wires, wireRec{c[0], c[1], c[2], c[3]})

		case "FLAG":
			if len(fields) < 4 {
				warnings = append(warnings, fmt.Sprintf("malformed FLAG record skipped: %s", line))
				continue
			}
			c, err := atoiAll(fields[1:3])
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("malformed FLAG record skipped: %s", line))
				continue
			}
			flags = append(flags, flagRec{c[0], c[1], fields[3]})

		case "SYMBOL":
			if len(fields) < 5 {
				warnings = append(warnings, fmt.Sprintf("malformed SYMBOL record skipped: %s", line))
				continue
			}
			c, err := atoiAll(fields[2:4])
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("malformed SYMBOL record skipped: %s", line))
				continue
			}
			symbols = append(symbols, &symbolRec{
				name: fields[1], x: c[0], y: c[1], orient: fields[4],
			})

		case "SYMATTR":
			if len(symbols) == 0 || len(fields) < 3 {
				continue
			}
			sym := symbols[len(symbols)-1]
			value := strings.Join(fields[2:], " ")
			switch fields[1] {
			case "InstName":
				sym.inst = value
			case "Value":
				sym.value = value
			case "Value2":
				sym.value2 = value
			case "SpiceModel":
				sym.model = value
			}

		case "TEXT":
			bang := strings.Index(line, "!")
			if bang < 0 {
				continue // annotation text
			}
			for _, directive := range strings.Split(line[bang+1:], "\\n") {
				directive = strings.TrimSpace(directive)
				if directive == "" {
					continue
				}
				if strings.HasPrefix(strings.ToLower(directive), ".param") {
					params.ParseDirectives(directive)
					continue
				}
				handled, err := netlist.ApplyDirective(an, directive)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("bad directive skipped: %v", err))
					continue
				}
				if handled {
					analysisSeen = true
				}
			}
		}
	}

	if len(symbols) == 0 {
		return nil, nil, warnings, &netlist.ParseError{Reason: "no symbols found"}
	}

	ckt := graph.New("")
	uf := graph.NewUnionFind()
	for _, w := range wires {
		uf.Union(pointKey(w.x1, w.y1), pointKey(w.x2, w.y2))
	}

	// Pin terminals by absolute point.
	type pinAt struct {
		term graph.Terminal
		key  string
	}
	var pins []pinAt

	for _, sym := range symbols {
		ctype, ok := catalog.SymbolType(sym.name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unsupported symbol %q skipped", sym.name))
			continue
		}

		comp, err := buildComponent(ckt, sym, ctype)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("symbol %q skipped: %v", sym.name, err))
			continue
		}
		if err := ckt.AddComponent(comp); err != nil {
			warnings = append(warnings, fmt.Sprintf("symbol %q skipped: %v", sym.name, err))
			continue
		}

		for i, off := range catalog.PinOffsets(ctype) {
			p, err := Transform(sym.orient, off)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("symbol %q: %v", sym.name, err))
				break
			}
			key := pointKey(sym.x+p.X, sym.y+p.Y)
			uf.Add(key)
			pins = append(pins, pinAt{graph.Terminal{ComponentID: comp.ID, Index: i}, key})
		}
	}

	if len(ckt.Components) == 0 {
		return nil, nil, warnings, &netlist.ParseError{Reason: "no recognizable symbols"}
	}

	// Ground roots and named nets from FLAG records.
	groundRoots := make(map[int]bool)
	netNames := make(map[int]string)
	for _, f := range flags {
		root := uf.Root(pointKey(f.x, f.y))
		if f.label == "0" {
			groundRoots[root] = true
		} else {
			netNames[root] = f.label
		}
	}

	// Group pins by electrical point group and materialize wires.
	groupOrder := []int{}
	groupTerms := make(map[int][]graph.Terminal)
	for _, pin := range pins {
		root := uf.Root(pin.key)
		if _, seen := groupTerms[root]; !seen {
			groupOrder = append(groupOrder, root)
		}
		groupTerms[root] = append(groupTerms[root], pin.term)
	}

	for _, root := range groupOrder {
		terms := groupTerms[root]
		if groundRoots[root] {
			for _, term := range terms {
				gid := ckt.NextID(catalog.Ground)
				if err := ckt.AddComponent(&graph.Component{ID: gid, Type: catalog.Ground}); err != nil {
					return nil, nil, warnings, err
				}
				if err := ckt.AddWire(&graph.Wire{
					StartID: term.ComponentID, StartTerminal: term.Index,
					EndID: gid, EndTerminal: 0,
				}); err != nil {
					return nil, nil, warnings, err
				}
			}
			continue
		}
		for i := 1; i < len(terms); i++ {
			a, b := terms[i-1], terms[i]
			if err := ckt.AddWire(&graph.Wire{
				StartID: a.ComponentID, StartTerminal: a.Index,
				EndID: b.ComponentID, EndTerminal: b.Index,
			}); err != nil {
				return nil, nil, warnings, err
			}
		}
	}

	ckt.RebuildNodes()

	for _, root := range groupOrder {
		name, ok := netNames[root]
		if !ok {
			continue
		}
		terms := groupTerms[root]
		if len(terms) == 0 {
			continue
		}
		idx := ckt.NodeFor(terms[0].ComponentID, terms[0].Index)
		if idx >= 0 && !ckt.Nodes[idx].IsGround {
			ckt.Nodes[idx].CustomLabel = name
		}
	}

	if !analysisSeen {
		an = nil
	}
	return ckt, an, warnings, nil
}

// buildComponent turns one SYMBOL record into a component instance.
func buildComponent(ckt *graph.Circuit, sym *symbolRec, ctype catalog.ComponentType) (*graph.Component, error) {
	id := sym.inst
	if id == "" {
		id = ckt.NextID(ctype)
	}
	value := sym.value
	if value == "" {
		value = sym.model
	}
	if value == "" {
		value = catalog.DefaultValue(ctype)
	}
	rotation, flipH := orientFields(sym.orient)

	comp := &graph.Component{
		ID:       id,
		Type:     ctype,
		Value:    value,
		X:        sym.x,
		Y:        sym.y,
		Rotation: rotation,
		FlipH:    flipH,
	}

	// LTspice keeps AC-only waveform specs in Value2.
	if ctype == catalog.VoltageSource {
		for _, v := range []string{sym.value, sym.value2} {
			if wtype, wparams, ok := netlist.DetectWaveform(v); ok {
				comp.Type = catalog.WaveformSource
				comp.Value = netlist.FormatWaveform(wtype, wparams)
				comp.WaveformType = wtype
				comp.WaveformParams = wparams
				break
			}
		}
	}
	return comp, nil
}

func pointKey(x, y int) string {
	return strconv.Itoa(x) + "," + strconv.Itoa(y)
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"spicecad/internal/models"
	"spicecad/pkg/catalog"
	"spicecad/pkg/graph"
	"spicecad/pkg/param"
)

// ParseError is the fatal import failure: the input had no usable
// content at all. Anything less is a recoverable warning.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "netlist parse error: " + e.Reason
}

// Importer converts SPICE netlist text into a circuit graph. Malformed
// or unsupported lines are recorded in Warnings and skipped.
type Importer struct {
	warnings []string
	params   *param.Processor
}

func NewImporter() *Importer {
	return &Importer{params: param.NewProcessor()}
}

// Warnings returns the lines that were skipped and why.
func (imp *Importer) Warnings() []string {
	return imp.warnings
}

// Params returns the .param definitions collected during import.
func (imp *Importer) Params() *param.Processor {
	return imp.params
}

func (imp *Importer) warnf(format string, args ...any) {
	imp.warnings = append(imp.warnings, fmt.Sprintf(format, args...))
}

// pendingComp is a parsed card before connectivity is materialized:
// the component plus its node names in schematic terminal order.
type pendingComp struct {
	comp *graph.Component
	nets []string
}

type couplingEntry struct {
	name  string
	prim  string
	sec   string
	value string
}

// Import parses netlist text. It fails only when the text is empty or
// contains zero recognizable component lines; the returned Analysis is
// nil when no analysis directive was present.
func (imp *Importer) Import(text string) (*graph.Circuit, *Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &ParseError{Reason: "empty input"}
	}

	title, lines := logicalLines(text)
	ckt := graph.New(title)

	an := &Analysis{}
	analysisSeen := false
	modelTypes := make(map[string]string)
	subcktPins := make(map[string][]string)
	var compLines []string

	// Pass 1: splice .subckt blocks aside, collect dot directives,
	// queue component cards.
	var subcktName string
	var subcktBody []string
	depth := 0
	for _, line := range lines {
		lower := strings.ToLower(line)

		if depth > 0 {
			subcktBody = append(subcktBody, line)
			if strings.HasPrefix(lower, ".subckt") {
				depth++
			} else if strings.HasPrefix(lower, ".ends") {
				depth--
				if depth == 0 {
					ckt.SubcircuitDefs[subcktName] = strings.Join(subcktBody, "\n")
				}
			}
			continue
		}

		if strings.HasPrefix(lower, ".subckt") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				imp.warnf("malformed .subckt line skipped: %s", line)
				continue
			}
			subcktName = fields[1]
			subcktPins[subcktName] = fields[2:]
			subcktBody = []string{line}
			depth = 1
			continue
		}

		if strings.HasPrefix(line, ".") {
			handled, err := ApplyDirective(an, line)
			if err != nil {
				imp.warnf("bad directive skipped: %v", err)
				continue
			}
			if handled {
				analysisSeen = true
				continue
			}
			switch {
			case strings.HasPrefix(lower, ".param"):
				imp.params.ParseDirectives(line)
			case strings.HasPrefix(lower, ".model"):
				name, mtype, ok := parseModelCard(line)
				if !ok {
					imp.warnf("malformed .model line skipped: %s", line)
					continue
				}
				modelTypes[name] = mtype
			case strings.HasPrefix(lower, ".end"):
				// terminator, nothing to record
			default:
				imp.warnf("unsupported directive skipped: %s", line)
			}
			continue
		}

		compLines = append(compLines, line)
	}
	if depth > 0 {
		imp.warnf("unterminated .subckt %s", subcktName)
		ckt.SubcircuitDefs[subcktName] = strings.Join(subcktBody, "\n")
	}

	// Pass 2: parse cards.
	var pendings []*pendingComp
	var couplings []couplingEntry
	for _, line := range compLines {
		tokens := Tokenize(line)
		if len(tokens) < 2 {
			imp.warnf("short line skipped: %s", line)
			continue
		}
		if strings.HasPrefix(strings.ToUpper(tokens[0]), "K") {
			if len(tokens) < 4 {
				imp.warnf("malformed coupling line skipped: %s", line)
				continue
			}
			couplings = append(couplings, couplingEntry{
				name: tokens[0], prim: tokens[1], sec: tokens[2], value: tokens[3],
			})
			continue
		}
		p, err := imp.parseCard(tokens, modelTypes, subcktPins, ckt)
		if err != nil {
			imp.warnf("%v: %s", err, line)
			continue
		}
		if p != nil {
			pendings = append(pendings, p)
		}
	}

	pendings = imp.foldTransformers(pendings, couplings)

	if len(pendings) == 0 {
		return nil, nil, &ParseError{Reason: "no recognizable component lines"}
	}

	if err := materialize(ckt, pendings); err != nil {
		return nil, nil, err
	}

	if !analysisSeen {
		an = nil
	}
	return ckt, an, nil
}

// logicalLines strips the title line and comments and joins "+"
// continuations. Inline comments start with ";" or "$".
func logicalLines(text string) (string, []string) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	title := ""
	if scanner.Scan() {
		title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "*"))
	}

	var lines []string
	var current string
	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if idx := strings.IndexAny(line, ";$"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, "+") {
			current += " " + strings.TrimSpace(line[1:])
			continue
		}
		flush()
		current = line
	}
	flush()
	return title, lines
}

func parseModelCard(line string) (string, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", false
	}
	name := fields[1]
	mtype := strings.ToUpper(fields[2])
	if i := strings.Index(mtype, "("); i >= 0 {
		mtype = mtype[:i]
	}
	return name, mtype, true
}

// parseCard dispatches on the SPICE prefix letter.
func (imp *Importer) parseCard(tokens []string, modelTypes map[string]string,
	subcktPins map[string][]string, ckt *graph.Circuit) (*pendingComp, error) {

	name := tokens[0]
	prefix := strings.ToUpper(name[:1])

	switch prefix {
	case "R":
		return simpleCard(name, catalog.Resistor, tokens)
	case "C":
		return reactiveCard(name, catalog.Capacitor, tokens)
	case "L":
		return reactiveCard(name, catalog.Inductor, tokens)
	case "V", "I":
		return sourceCard(name, prefix, tokens)
	case "D":
		return diodeCard(name, tokens)
	case "Q":
		return bjtCard(name, tokens, modelTypes)
	case "M":
		return mosfetCard(name, tokens, modelTypes)
	case "E", "G", "H", "F", "S":
		return dependentCard(name, prefix, tokens)
	case "X":
		return subcircuitCard(name, tokens, subcktPins, ckt)
	default:
		return nil, fmt.Errorf("unsupported component prefix %q", prefix)
	}
}

func simpleCard(name string, t catalog.ComponentType, tokens []string) (*pendingComp, error) {
	if len(tokens) < 4 {
		return nil, fmt.Errorf("insufficient fields for %s", name)
	}
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: tokens[3]},
		nets: tokens[1:3],
	}, nil
}

func reactiveCard(name string, t catalog.ComponentType, tokens []string) (*pendingComp, error) {
	p, err := simpleCard(name, t, tokens)
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens[4:] {
		if strings.HasPrefix(strings.ToUpper(tok), "IC=") {
			p.comp.InitialCondition = tok[3:]
		}
	}
	return p, nil
}

func sourceCard(name, prefix string, tokens []string) (*pendingComp, error) {
	if len(tokens) < 4 {
		return nil, fmt.Errorf("insufficient fields for source %s", name)
	}
	rest := strings.Join(tokens[3:], " ")
	nets := tokens[1:3]

	if wtype, wparams, ok := DetectWaveform(rest); ok && prefix == "V" {
		return &pendingComp{
			comp: &graph.Component{
				ID:             name,
				Type:           catalog.WaveformSource,
				Value:          FormatWaveform(wtype, wparams),
				WaveformType:   wtype,
				WaveformParams: wparams,
			},
			nets: nets,
		}, nil
	}

	t := catalog.VoltageSource
	if prefix == "I" {
		t = catalog.CurrentSource
	}
	value := rest
	if strings.EqualFold(tokens[3], "DC") && len(tokens) > 4 {
		value = tokens[4]
	}
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: value},
		nets: nets,
	}, nil
}

func diodeCard(name string, tokens []string) (*pendingComp, error) {
	if len(tokens) < 3 {
		return nil, fmt.Errorf("insufficient fields for diode %s", name)
	}
	t := catalog.Diode
	model := catalog.DefaultValue(catalog.Diode)
	if len(tokens) > 3 {
		model = tokens[3]
		upper := strings.ToUpper(model)
		switch {
		case strings.Contains(upper, "LED"):
			t = catalog.LED
		case strings.Contains(upper, "ZENER") || strings.HasPrefix(upper, "BZX") ||
			strings.HasPrefix(upper, "1N75"):
			t = catalog.Zener
		}
	}
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: model},
		nets: tokens[1:3],
	}, nil
}

func bjtCard(name string, tokens []string, modelTypes map[string]string) (*pendingComp, error) {
	if len(tokens) < 5 {
		return nil, fmt.Errorf("insufficient fields for BJT %s", name)
	}
	model := tokens[4]
	t := catalog.BJTNPN
	if strings.Contains(strings.ToUpper(modelTypes[model]), "PNP") {
		t = catalog.BJTPNP
	}
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: model},
		nets: tokens[1:4], // C B E
	}, nil
}

func mosfetCard(name string, tokens []string, modelTypes map[string]string) (*pendingComp, error) {
	if len(tokens) < 5 {
		return nil, fmt.Errorf("insufficient fields for MOSFET %s", name)
	}
	var nets []string
	var model string
	if len(tokens) >= 6 {
		nets = tokens[1:5] // D G S B
		model = tokens[5]
	} else {
		nets = append([]string{}, tokens[1:4]...)
		nets = append(nets, tokens[3]) // bulk tied to source
		model = tokens[4]
	}
	t := catalog.NMOSFET
	if strings.Contains(strings.ToUpper(modelTypes[model]), "PMOS") {
		t = catalog.PMOSFET
	}
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: model},
		nets: nets,
	}, nil
}

func dependentCard(name, prefix string, tokens []string) (*pendingComp, error) {
	if len(tokens) < 6 {
		return nil, fmt.Errorf("insufficient fields for dependent source %s", name)
	}
	var t catalog.ComponentType
	switch prefix {
	case "E":
		t = catalog.VCVS
	case "G":
		t = catalog.VCCS
	case "H":
		t = catalog.CCVS
	case "F":
		t = catalog.CCCS
	case "S":
		t = catalog.VCSwitch
	}
	// Card order is [out+, out-, ctrl+, ctrl-]; map back to schematic
	// terminal order.
	nets := catalog.FromSpiceOrder(t, tokens[1:5])
	return &pendingComp{
		comp: &graph.Component{ID: name, Type: t, Value: tokens[5]},
		nets: nets,
	}, nil
}

func subcircuitCard(name string, tokens []string, subcktPins map[string][]string,
	ckt *graph.Circuit) (*pendingComp, error) {

	if len(tokens) < 3 {
		return nil, fmt.Errorf("insufficient fields for subcircuit instance %s", name)
	}
	subName := tokens[len(tokens)-1]
	nodes := tokens[1 : len(tokens)-1]

	if models.IsOpAmpModel(subName) && len(nodes) == 3 {
		canonical, _ := models.OpAmpModel(subName)
		return &pendingComp{
			comp: &graph.Component{ID: name, Type: catalog.OpAmp, Value: canonical},
			nets: catalog.FromSpiceOrder(catalog.OpAmp, nodes),
		}, nil
	}

	pins, ok := subcktPins[subName]
	if !ok || len(pins) != len(nodes) {
		pins = make([]string, len(nodes))
		for i := range pins {
			pins[i] = fmt.Sprintf("P%d", i+1)
		}
	}
	return &pendingComp{
		comp: &graph.Component{
			ID:                   name,
			Type:                 catalog.Subcircuit,
			SubcircuitName:       subName,
			SubcircuitPins:       pins,
			SubcircuitDefinition: ckt.SubcircuitDefs[subName],
		},
		nets: nodes,
	}, nil
}

var primRe = regexp.MustCompile(`(?i)^L_prim_(.+)$`)

// foldTransformers collapses L_prim_X / L_sec_X inductor pairs joined by
// a K statement back into a single Transformer component.
func (imp *Importer) foldTransformers(pendings []*pendingComp, couplings []couplingEntry) []*pendingComp {
	byID := make(map[string]int)
	for i, p := range pendings {
		byID[strings.ToLower(p.comp.ID)] = i
	}

	removed := make(map[int]bool)
	var transformers []*pendingComp
	for _, k := range couplings {
		m := primRe.FindStringSubmatch(k.prim)
		if m == nil {
			imp.warnf("coupling %s does not name a transformer pair, skipped", k.name)
			continue
		}
		base := m[1]
		pi, pok := byID[strings.ToLower(k.prim)]
		si, sok := byID[strings.ToLower("L_sec_"+base)]
		if !pok || !sok || !strings.EqualFold(k.sec, "L_sec_"+base) ||
			pendings[pi].comp.Type != catalog.Inductor || pendings[si].comp.Type != catalog.Inductor {
			imp.warnf("coupling %s does not name a transformer pair, skipped", k.name)
			continue
		}
		prim, sec := pendings[pi], pendings[si]
		removed[pi], removed[si] = true, true
		transformers = append(transformers, &pendingComp{
			comp: &graph.Component{
				ID:    base,
				Type:  catalog.Transformer,
				Value: fmt.Sprintf("%s %s %s", k.value, prim.comp.Value, sec.comp.Value),
			},
			nets: []string{prim.nets[0], prim.nets[1], sec.nets[0], sec.nets[1]},
		})
	}

	var out []*pendingComp
	for i, p := range pendings {
		if !removed[i] {
			out = append(out, p)
		}
	}
	return append(out, transformers...)
}

// materialize adds the parsed components and reconstructs connectivity:
// terminals sharing a node name are unioned and wired in a chain, and
// every terminal on node "0" gets its own synthesized Ground component.
func materialize(ckt *graph.Circuit, pendings []*pendingComp) error {
	type netGroup struct {
		display string
		terms   []graph.Terminal
	}
	groups := make(map[string]*netGroup)
	var order []string

	for _, p := range pendings {
		if err := ckt.AddComponent(p.comp); err != nil {
			return err
		}
		for t, netName := range p.nets {
			key := netKey(netName)
			g, ok := groups[key]
			if !ok {
				g = &netGroup{display: netName}
				groups[key] = g
				order = append(order, key)
			}
			g.terms = append(g.terms, graph.Terminal{ComponentID: p.comp.ID, Index: t})
		}
	}

	for _, key := range order {
		g := groups[key]
		if key == "0" {
			for _, term := range g.terms {
				gid := ckt.NextID(catalog.Ground)
				if err := ckt.AddComponent(&graph.Component{ID: gid, Type: catalog.Ground}); err != nil {
					return err
				}
				if err := ckt.AddWire(&graph.Wire{
					StartID: term.ComponentID, StartTerminal: term.Index,
					EndID: gid, EndTerminal: 0,
				}); err != nil {
					return err
				}
			}
			continue
		}
		for i := 1; i < len(g.terms); i++ {
			a, b := g.terms[i-1], g.terms[i]
			if err := ckt.AddWire(&graph.Wire{
				StartID: a.ComponentID, StartTerminal: a.Index,
				EndID: b.ComponentID, EndTerminal: b.Index,
			}); err != nil {
				return err
			}
		}
	}

	ckt.RebuildNodes()

	// Preserve the textual node names as custom labels.
	for _, key := range order {
		g := groups[key]
		if key == "0" || len(g.terms) == 0 {
			continue
		}
		idx := ckt.NodeFor(g.terms[0].ComponentID, g.terms[0].Index)
		if idx >= 0 && !ckt.Nodes[idx].IsGround {
			ckt.Nodes[idx].CustomLabel = g.display
		}
	}
	return nil
}

// netKey normalizes a node name: matching is case-insensitive, and the
// conventional "gnd" alias folds into the distinguished ground name "0".
func netKey(name string) string {
	lower := strings.ToLower(name)
	if lower == "gnd" {
		return "0"
	}
	return lower
}

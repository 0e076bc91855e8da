package catalog

import (
	"strings"
)

// ComponentType enumerates every component the editor can place.
type ComponentType int

const (
	Resistor ComponentType = iota
	Capacitor
	Inductor
	VoltageSource
	CurrentSource
	WaveformSource
	Ground
	OpAmp
	VCVS
	CCVS
	VCCS
	CCCS
	BJTNPN
	BJTPNP
	NMOSFET
	PMOSFET
	VCSwitch
	Diode
	LED
	Zener
	Transformer
	Subcircuit
)

func (t ComponentType) String() string {
	switch t {
	case Resistor:
		return "Resistor"
	case Capacitor:
		return "Capacitor"
	case Inductor:
		return "Inductor"
	case VoltageSource:
		return "Voltage Source"
	case CurrentSource:
		return "Current Source"
	case WaveformSource:
		return "Waveform Source"
	case Ground:
		return "Ground"
	case OpAmp:
		return "Op-Amp"
	case VCVS:
		return "VCVS"
	case CCVS:
		return "CCVS"
	case VCCS:
		return "VCCS"
	case CCCS:
		return "CCCS"
	case BJTNPN:
		return "BJT (NPN)"
	case BJTPNP:
		return "BJT (PNP)"
	case NMOSFET:
		return "MOSFET (N)"
	case PMOSFET:
		return "MOSFET (P)"
	case VCSwitch:
		return "VC Switch"
	case Diode:
		return "Diode"
	case LED:
		return "LED"
	case Zener:
		return "Zener"
	case Transformer:
		return "Transformer"
	case Subcircuit:
		return "Subcircuit"
	default:
		return "Unknown"
	}
}

// Entry is the static metadata for one component type.
type Entry struct {
	Prefix       string // SPICE prefix letter ("" for Ground)
	Terminals    int    // fixed terminal count (Subcircuit overrides per instance)
	DefaultValue string
	// NodeOrder maps schematic pin index -> SPICE argument position.
	// nil means identity.
	NodeOrder []int
	// ModelType is the .model type string for model-carrying parts
	// ("" when the value is not a model name).
	ModelType string
	// PinOffsets are the canonical pin coordinates at orientation R0,
	// relative to the symbol origin, indexed by schematic pin.
	PinOffsets []Point
}

// Point is an integer schematic coordinate.
type Point struct {
	X, Y int
}

var entries = map[ComponentType]Entry{
	Resistor:      {Prefix: "R", Terminals: 2, DefaultValue: "1k", PinOffsets: twoPin},
	Capacitor:     {Prefix: "C", Terminals: 2, DefaultValue: "1u", PinOffsets: twoPin},
	Inductor:      {Prefix: "L", Terminals: 2, DefaultValue: "1m", PinOffsets: twoPin},
	VoltageSource: {Prefix: "V", Terminals: 2, DefaultValue: "10", PinOffsets: twoPin},
	CurrentSource: {Prefix: "I", Terminals: 2, DefaultValue: "1m", PinOffsets: twoPin},
	// Waveform sources are V cards whose value is the function syntax.
	WaveformSource: {Prefix: "V", Terminals: 2, DefaultValue: "SIN(0 5 1k)", PinOffsets: twoPin},
	Ground:         {Prefix: "", Terminals: 1, DefaultValue: "", PinOffsets: []Point{{0, 0}}},
	// Schematic order [inv, noninv, out]; SPICE pin order [noninv, inv, out].
	OpAmp: {Prefix: "X", Terminals: 3, DefaultValue: "Ideal", NodeOrder: []int{1, 0, 2},
		PinOffsets: []Point{{0, 32}, {0, 64}, {96, 48}}},
	VCVS: {Prefix: "E", Terminals: 4, DefaultValue: "1", NodeOrder: ctrlFirst, PinOffsets: fourPort},
	CCVS: {Prefix: "H", Terminals: 4, DefaultValue: "1", NodeOrder: ctrlFirst, PinOffsets: fourPort},
	VCCS: {Prefix: "G", Terminals: 4, DefaultValue: "1m", NodeOrder: ctrlFirst, PinOffsets: fourPort},
	CCCS: {Prefix: "F", Terminals: 4, DefaultValue: "1", NodeOrder: ctrlFirst, PinOffsets: fourPort},
	BJTNPN: {Prefix: "Q", Terminals: 3, DefaultValue: "2N2222", ModelType: "NPN",
		PinOffsets: bjtPins},
	BJTPNP: {Prefix: "Q", Terminals: 3, DefaultValue: "2N2907", ModelType: "PNP",
		PinOffsets: bjtPins},
	NMOSFET: {Prefix: "M", Terminals: 4, DefaultValue: "NMOS1", ModelType: "NMOS",
		PinOffsets: mosPins},
	PMOSFET: {Prefix: "M", Terminals: 4, DefaultValue: "PMOS1", ModelType: "PMOS",
		PinOffsets: mosPins},
	VCSwitch: {Prefix: "S", Terminals: 4, DefaultValue: "SW1", ModelType: "SW",
		NodeOrder: ctrlFirst, PinOffsets: fourPort},
	Diode: {Prefix: "D", Terminals: 2, DefaultValue: "1N4148", ModelType: "D", PinOffsets: twoPin},
	LED:   {Prefix: "D", Terminals: 2, DefaultValue: "LED", ModelType: "D", PinOffsets: twoPin},
	Zener: {Prefix: "D", Terminals: 2, DefaultValue: "1N750", ModelType: "D", PinOffsets: twoPin},
	// Emitted as two coupled inductors plus a K statement.
	Transformer: {Prefix: "K", Terminals: 4, DefaultValue: "1", PinOffsets: fourPort},
	Subcircuit:  {Prefix: "X", Terminals: 0, DefaultValue: ""},
}

// Schematic order [ctrl+, ctrl-, out+, out-]; SPICE wants the output
// pair first, so argument positions are [2,3,0,1].
var ctrlFirst = []int{2, 3, 0, 1}

var (
	twoPin   = []Point{{0, 16}, {0, 96}}
	fourPort = []Point{{0, 16}, {0, 96}, {96, 16}, {96, 96}}
	bjtPins  = []Point{{64, 0}, {0, 48}, {64, 96}}          // C B E
	mosPins  = []Point{{64, 0}, {0, 48}, {64, 96}, {64, 48}} // D G S B
)

// Lookup returns the catalog entry for a component type.
func Lookup(t ComponentType) (Entry, bool) {
	e, ok := entries[t]
	return e, ok
}

// Prefix returns the SPICE prefix letter for a type.
func Prefix(t ComponentType) string {
	return entries[t].Prefix
}

// Terminals returns the schematic terminal count. Subcircuit instances
// carry their own pin list and must pass its length here.
func Terminals(t ComponentType, subcircuitPins int) int {
	if t == Subcircuit {
		return subcircuitPins
	}
	return entries[t].Terminals
}

// DefaultValue returns the value a freshly placed component gets.
func DefaultValue(t ComponentType) string {
	return entries[t].DefaultValue
}

// ModelType returns the .model type string, or "" when the component's
// value is not a model name.
func ModelType(t ComponentType) string {
	return entries[t].ModelType
}

// ToSpiceOrder permutes schematic-ordered node labels into the order the
// SPICE card expects.
func ToSpiceOrder(t ComponentType, nodes []string) []string {
	perm := entries[t].NodeOrder
	if perm == nil {
		return nodes
	}
	out := make([]string, len(nodes))
	for pin, pos := range perm {
		if pin < len(nodes) && pos < len(out) {
			out[pos] = nodes[pin]
		}
	}
	return out
}

// FromSpiceOrder is the inverse of ToSpiceOrder: it maps card-ordered
// node names back to schematic terminal order.
func FromSpiceOrder(t ComponentType, nodes []string) []string {
	perm := entries[t].NodeOrder
	if perm == nil {
		return nodes
	}
	out := make([]string, len(nodes))
	for pin, pos := range perm {
		if pos < len(nodes) && pin < len(out) {
			out[pin] = nodes[pos]
		}
	}
	return out
}

// PinOffsets returns the canonical pin offsets at orientation R0.
func PinOffsets(t ComponentType) []Point {
	return entries[t].PinOffsets
}

// symbolNames maps lowercase .asc symbol names to component types. Names
// arrive with library path prefixes ("Misc\\battery"), which are stripped
// before lookup.
var symbolNames = map[string]ComponentType{
	"res":       Resistor,
	"res2":      Resistor,
	"resistor":  Resistor,
	"cap":       Capacitor,
	"polcap":    Capacitor,
	"capacitor": Capacitor,
	"ind":       Inductor,
	"ind2":      Inductor,
	"inductor":  Inductor,
	"voltage":   VoltageSource,
	"battery":   VoltageSource,
	"current":   CurrentSource,
	"opamp":     OpAmp,
	"opamp2":    OpAmp,
	"e":         VCVS,
	"e2":        VCVS,
	"h":         CCVS,
	"g":         VCCS,
	"g2":        VCCS,
	"f":         CCCS,
	"npn":       BJTNPN,
	"npn2":      BJTNPN,
	"pnp":       BJTPNP,
	"pnp2":      BJTPNP,
	"nmos":      NMOSFET,
	"nmos4":     NMOSFET,
	"pmos":      PMOSFET,
	"pmos4":     PMOSFET,
	"sw":        VCSwitch,
	"diode":     Diode,
	"led":       LED,
	"zener":     Zener,
	"xformer":   Transformer,
}

// SymbolType resolves an .asc SYMBOL name to a component type. Matching
// is case-insensitive and ignores any library path prefix.
func SymbolType(name string) (ComponentType, bool) {
	n := strings.ToLower(name)
	if i := strings.LastIndexAny(n, "\\/"); i >= 0 {
		n = n[i+1:]
	}
	t, ok := symbolNames[n]
	return t, ok
}

// SymbolName returns a representative .asc symbol name for a type, used
// when exporting; "" when the type has no symbol.
func SymbolName(t ComponentType) string {
	switch t {
	case Resistor:
		return "res"
	case Capacitor:
		return "cap"
	case Inductor:
		return "ind"
	case VoltageSource, WaveformSource:
		return "voltage"
	case CurrentSource:
		return "current"
	case OpAmp:
		return "opamp"
	case VCVS:
		return "e"
	case CCVS:
		return "h"
	case VCCS:
		return "g"
	case CCCS:
		return "f"
	case BJTNPN:
		return "npn"
	case BJTPNP:
		return "pnp"
	case NMOSFET:
		return "nmos"
	case PMOSFET:
		return "pmos"
	case VCSwitch:
		return "sw"
	case Diode:
		return "diode"
	case LED:
		return "led"
	case Zener:
		return "zener"
	case Transformer:
		return "xformer"
	default:
		return ""
	}
}

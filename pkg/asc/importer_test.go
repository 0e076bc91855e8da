package asc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"spicecad/pkg/catalog"
	"spicecad/pkg/netlist"
)

const dividerASC = `Version 4
SHEET 1 880 680
WIRE 0 116 100 116
WIRE 0 196 100 196
SYMBOL voltage 0 100 R0
SYMATTR InstName V1
SYMATTR Value 10
SYMBOL res 100 100 R0
SYMATTR InstName R1
SYMATTR Value 1k
FLAG 0 196 0
TEXT -24 360 Left 2 !.op
`

func TestImportDivider(t *testing.T) {
	ckt, an, warnings, err := Import(dividerASC)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}

	v1 := ckt.Components["V1"]
	if v1 == nil || v1.Type != catalog.VoltageSource || v1.Value != "10" {
		t.Fatalf("V1 = %+v", v1)
	}
	if v1.X != 0 || v1.Y != 100 {
		t.Errorf("V1 placed at (%d,%d)", v1.X, v1.Y)
	}
	r1 := ckt.Components["R1"]
	if r1 == nil || r1.Type != catalog.Resistor || r1.Value != "1k" {
		t.Fatalf("R1 = %+v", r1)
	}

	// Top pins joined by the first wire.
	if ckt.NodeFor("V1", 0) != ckt.NodeFor("R1", 0) {
		t.Errorf("top pins not connected")
	}
	// Bottom wire carries the ground flag; each pin gets its own ground.
	idx := ckt.NodeFor("V1", 1)
	if idx < 0 || !ckt.Nodes[idx].IsGround {
		t.Errorf("V1 bottom pin not grounded")
	}
	grounds := 0
	for _, comp := range ckt.Components {
		if comp.Type == catalog.Ground {
			grounds++
		}
	}
	if grounds != 2 {
		t.Errorf("ground count = %d, want 2", grounds)
	}

	if an == nil || an.Type != netlist.AnalysisOP {
		t.Errorf("analysis = %+v", an)
	}
}

func TestImportUnsupportedSymbol(t *testing.T) {
	text := `Version 4
SYMBOL res 0 0 R0
SYMATTR InstName R1
SYMBOL flux 100 0 R0
SYMATTR InstName U1
SYMBOL cap 200 0 R0
SYMATTR InstName C1
`
	ckt, _, warnings, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(ckt.Components) != 2 {
		t.Errorf("component count = %d, want 2", len(ckt.Components))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `"flux"`) {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestImportNoSymbols(t *testing.T) {
	var perr *netlist.ParseError
	if _, _, _, err := Import(""); !errors.As(err, &perr) {
		t.Errorf("empty input error = %v", err)
	}
	if _, _, _, err := Import("Version 4\nSHEET 1 880 680\n"); !errors.As(err, &perr) {
		t.Errorf("no-symbol error = %v", err)
	}
}

func TestImportPinCoincidence(t *testing.T) {
	// R2 is rotated 180 degrees, so its second pin lands on R1's second
	// pin at (200,196) with no wire between them.
	text := `Version 4
SYMBOL res 200 100 R0
SYMATTR InstName R1
SYMBOL res 200 292 R180
SYMATTR InstName R2
`
	ckt, _, warnings, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if ckt.NodeFor("R1", 1) != ckt.NodeFor("R2", 1) {
		t.Errorf("coincident pins not joined")
	}
	if ckt.NodeFor("R1", 0) == ckt.NodeFor("R2", 0) {
		t.Errorf("distant pins joined")
	}
	r2 := ckt.Components["R2"]
	if r2.Rotation != 180 || r2.FlipH {
		t.Errorf("R2 orientation = %d flip=%v", r2.Rotation, r2.FlipH)
	}
}

func TestImportMirroredOrientation(t *testing.T) {
	text := "Version 4\nSYMBOL res 0 0 M90\nSYMATTR InstName R1\n"
	ckt, _, _, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	r1 := ckt.Components["R1"]
	if r1.Rotation != 90 || !r1.FlipH {
		t.Errorf("R1 orientation = %d flip=%v", r1.Rotation, r1.FlipH)
	}
}

func TestImportNamedFlag(t *testing.T) {
	text := `Version 4
WIRE 0 116 100 116
SYMBOL voltage 0 100 R0
SYMATTR InstName V1
SYMBOL res 100 100 R0
SYMATTR InstName R1
FLAG 100 116 vin
`
	ckt, _, _, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	idx := ckt.NodeFor("V1", 0)
	if idx < 0 || ckt.Nodes[idx].Label() != "vin" {
		t.Errorf("flag label not applied, label = %q", ckt.Nodes[idx].Label())
	}
}

func TestImportWaveformValue2(t *testing.T) {
	text := `Version 4
SYMBOL voltage 0 0 R0
SYMATTR InstName V1
SYMATTR Value 0
SYMATTR Value2 SINE(0 1 1k)
SYMBOL voltage 200 0 R0
SYMATTR InstName V2
SYMATTR Value PULSE(0 5 0 1n 1n 1m 2m)
`
	ckt, _, _, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	v1 := ckt.Components["V1"]
	if v1.Type != catalog.WaveformSource || v1.WaveformType != "SIN" {
		t.Errorf("V1 = %+v", v1)
	}
	if !reflect.DeepEqual(v1.WaveformParams, []string{"0", "1", "1k"}) {
		t.Errorf("V1 params = %v", v1.WaveformParams)
	}
	if v2 := ckt.Components["V2"]; v2.Type != catalog.WaveformSource || v2.WaveformType != "PULSE" {
		t.Errorf("V2 = %+v", v2)
	}
}

func TestImportTextDirectives(t *testing.T) {
	text := `Version 4
SYMBOL res 0 0 R0
SYMATTR InstName R1
SYMATTR Value {rload}
TEXT 0 200 Left 2 !.param rload = 50\n.tran 1m 10m
TEXT 0 250 Left 2 ;just a comment
`
	imp := NewImporter()
	ckt, an, _, err := imp.Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if an == nil || an.Type != netlist.AnalysisTran {
		t.Fatalf("analysis = %+v", an)
	}
	if an.Tran.Stop != 1e-2 {
		t.Errorf("tran stop = %v", an.Tran.Stop)
	}
	vals, err := imp.Params().ResolveAll()
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if vals["rload"] != 50 {
		t.Errorf("rload = %v", vals["rload"])
	}
	if v := ckt.Components["R1"].Value; v != "{rload}" {
		t.Errorf("R1 value = %q", v)
	}
}

func TestImportSpiceModelAttribute(t *testing.T) {
	text := `Version 4
SYMBOL diode 0 0 R0
SYMATTR InstName D1
SYMATTR SpiceModel 1N5819
`
	ckt, _, _, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if v := ckt.Components["D1"].Value; v != "1N5819" {
		t.Errorf("D1 value = %q, want 1N5819", v)
	}
}

func TestImportDefaultsAndGeneratedIDs(t *testing.T) {
	text := "Version 4\nSYMBOL res 0 0 R0\nSYMBOL res 200 0 R0\n"
	ckt, _, _, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	r1 := ckt.Components["R1"]
	if r1 == nil || r1.Value != "1k" {
		t.Fatalf("R1 = %+v", r1)
	}
	if _, ok := ckt.Components["R2"]; !ok {
		t.Errorf("second resistor not numbered R2: %v", ckt.SortedIDs())
	}
}

func TestImportSymbolPathPrefix(t *testing.T) {
	text := "Version 4\nSYMBOL Misc\\\\battery 0 0 R0\nSYMATTR InstName V1\n"
	ckt, _, warnings, err := Import(text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if ckt.Components["V1"].Type != catalog.VoltageSource {
		t.Errorf("battery symbol type = %v", ckt.Components["V1"].Type)
	}
}

func TestRoundTripThroughNetlist(t *testing.T) {
	ckt, an, _, err := Import(dividerASC)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	out, err := netlist.Generate(ckt, an, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{"R1 ", "V1 ", ".op\n", ".end\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// Both bottom pins are grounded, so each card names node 0.
	if strings.Count(out, " 0 ") != 2 {
		t.Errorf("expected two grounded cards:\n%s", out)
	}
}

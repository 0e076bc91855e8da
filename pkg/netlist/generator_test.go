package netlist

import (
	"strings"
	"testing"

	"spicecad/pkg/catalog"
	"spicecad/pkg/graph"
	"spicecad/pkg/param"
)

func mustAdd(t *testing.T, ckt *graph.Circuit, comp *graph.Component) {
	t.Helper()
	if err := ckt.AddComponent(comp); err != nil {
		t.Fatalf("AddComponent(%s): %v", comp.ID, err)
	}
}

func TestGenerateVCVSPermutation(t *testing.T) {
	ckt := graph.New("perm")
	mustAdd(t, ckt, &graph.Component{ID: "E1", Type: catalog.VCVS, Value: "2"})

	// Unwired terminals land in their own nodes, labeled in terminal
	// order: ctrl+ = nodeA, ctrl- = nodeB, out+ = nodeC, out- = nodeD.
	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "E1 nodeC nodeD nodeA nodeB 2\n") {
		t.Errorf("VCVS card does not list output pair first:\n%s", out)
	}
}

func TestGenerateTransformer(t *testing.T) {
	ckt := graph.New("xfmr")
	mustAdd(t, ckt, &graph.Component{ID: "T1", Type: catalog.Transformer, Value: "0.95"})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		"L_prim_T1 nodeA nodeB 1m\n",
		"L_sec_T1 nodeC nodeD 1m\n",
		"K_T1 L_prim_T1 L_sec_T1 0.95\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "T1 nodeA nodeB nodeC nodeD") {
		t.Errorf("bare transformer card emitted:\n%s", out)
	}
}

func TestGenerateOpAmpDedup(t *testing.T) {
	ckt := graph.New("amps")
	mustAdd(t, ckt, &graph.Component{ID: "OP1", Type: catalog.OpAmp, Value: "LM741"})
	mustAdd(t, ckt, &graph.Component{ID: "OP2", Type: catalog.OpAmp, Value: "LM741"})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := strings.Count(out, ".subckt LM741"); n != 1 {
		t.Errorf("LM741 body emitted %d times, want 1", n)
	}
	// Op-amp pins emit SPICE order [noninv, inv, out].
	if !strings.Contains(out, "XOP1 nodeB nodeA nodeC LM741\n") {
		t.Errorf("missing op-amp instance line:\n%s", out)
	}
	if !strings.Contains(out, "XOP2 ") {
		t.Errorf("second instance missing:\n%s", out)
	}
}

func TestGenerateOpAmpUnknownModelFallsBack(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "OP1", Type: catalog.OpAmp, Value: "NoSuchAmp"})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, ".subckt Ideal") || !strings.Contains(out, "XOP1 nodeB nodeA nodeC Ideal\n") {
		t.Errorf("unknown model did not fall back to Ideal:\n%s", out)
	}
}

func TestGenerateSubcircuitInstance(t *testing.T) {
	def := ".subckt myamp in out\nR1 in out 1k\n.ends\n"
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{
		ID: "U1", Type: catalog.Subcircuit,
		SubcircuitName:       "myamp",
		SubcircuitPins:       []string{"in", "out"},
		SubcircuitDefinition: def,
	})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "XU1 nodeA nodeB myamp\n") {
		t.Errorf("instance line missing:\n%s", out)
	}
	if n := strings.Count(out, ".subckt myamp"); n != 1 {
		t.Errorf("definition emitted %d times, want 1:\n%s", n, out)
	}
}

func TestGenerateInitialCondition(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "C1", Type: catalog.Capacitor, Value: "1u", InitialCondition: "5"})
	mustAdd(t, ckt, &graph.Component{ID: "R1", Type: catalog.Resistor, Value: "1k", InitialCondition: "9"})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "C1 nodeA nodeB 1u IC=5\n") {
		t.Errorf("capacitor IC missing:\n%s", out)
	}
	// Initial conditions only apply to capacitors and inductors.
	if strings.Contains(out, "R1 nodeC nodeD 1k IC") {
		t.Errorf("resistor grew an IC suffix:\n%s", out)
	}
}

func TestGenerateModelCards(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "D1", Type: catalog.Diode, Value: "1N4148"})
	mustAdd(t, ckt, &graph.Component{ID: "D2", Type: catalog.Diode, Value: "1N4148"})
	mustAdd(t, ckt, &graph.Component{ID: "Q1", Type: catalog.BJTPNP, Value: "2N2907"})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := strings.Count(out, ".model 1N4148 D\n"); n != 1 {
		t.Errorf(".model 1N4148 emitted %d times, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, ".model 2N2907 PNP\n") {
		t.Errorf("PNP model card missing:\n%s", out)
	}
}

func TestGenerateWaveform(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{
		ID: "W1", Type: catalog.WaveformSource,
		WaveformType: "SIN", WaveformParams: []string{"0", "5", "1k"},
	})

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "VW1 nodeA nodeB SIN(0 5 1k)\n") {
		t.Errorf("waveform card missing:\n%s", out)
	}
}

func TestGenerateAnalysisDirectives(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "R1", Type: catalog.Resistor, Value: "1k"})

	an := &Analysis{Type: AnalysisTran, Tran: TranParam{Step: 1e-3, Stop: 1e-2}}
	an.Meas = append(an.Meas, ".meas tran vmax MAX V(nodeA)")
	out, err := Generate(ckt, an, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, ".tran 1m 10m\n") {
		t.Errorf("tran directive missing:\n%s", out)
	}
	if !strings.Contains(out, ".meas tran vmax MAX V(nodeA)\n") {
		t.Errorf("meas line missing:\n%s", out)
	}
	if !strings.HasSuffix(out, ".end\n") {
		t.Errorf("netlist does not terminate with .end:\n%s", out)
	}
}

func TestGenerateNoiseBlock(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "R1", Type: catalog.Resistor, Value: "1k"})

	an := &Analysis{Type: AnalysisNoise, Noise: NoiseParam{
		Output: "out", Source: "V1", Sweep: "DEC", Points: 10, FStart: 1, FStop: 1e5,
	}}
	out, err := Generate(ckt, an, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		".noise V(out) V1 DEC 10 1 100k\n",
		"setplot noise1\n",
		"print onoise_spectrum inoise_spectrum\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestGenerateParamsFirst(t *testing.T) {
	ckt := graph.New("params")
	mustAdd(t, ckt, &graph.Component{ID: "R1", Type: catalog.Resistor, Value: "{rload*2}"})

	p := param.NewProcessor()
	p.Define("rload", "50")
	out, err := Generate(ckt, nil, p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "params" {
		t.Errorf("title line = %q", lines[0])
	}
	if lines[1] != ".param rload = 50" {
		t.Errorf("param directive not first after title: %q", lines[1])
	}
	if !strings.Contains(out, "R1 nodeA nodeB {rload*2}\n") {
		t.Errorf("parametric value not preserved:\n%s", out)
	}
}

func TestGenerateSkipsGround(t *testing.T) {
	ckt := graph.New("")
	mustAdd(t, ckt, &graph.Component{ID: "R1", Type: catalog.Resistor, Value: "1k"})
	mustAdd(t, ckt, &graph.Component{ID: "GND1", Type: catalog.Ground})
	if err := ckt.AddWire(&graph.Wire{StartID: "R1", StartTerminal: 1, EndID: "GND1", EndTerminal: 0}); err != nil {
		t.Fatal(err)
	}

	out, err := Generate(ckt, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "R1 nodeA 0 1k\n") {
		t.Errorf("grounded terminal not labeled 0:\n%s", out)
	}
	if strings.Contains(out, "GND1") {
		t.Errorf("ground emitted a card:\n%s", out)
	}
}

package graph

import (
	"fmt"

	"spicecad/pkg/catalog"
)

// Component is one placed component instance.
type Component struct {
	ID       string
	Type     catalog.ComponentType
	Value    string // literal ("1k"), parametric ("{R2/R1}"), or model name
	X, Y     int
	Rotation int // 0, 90, 180, 270
	FlipH    bool
	FlipV    bool
	Locked   bool

	// Only meaningful for Capacitor and Inductor.
	InitialCondition string

	// Only meaningful for WaveformSource.
	WaveformType   string // SIN, PULSE, EXP, PWL
	WaveformParams []string

	// Only meaningful for Subcircuit.
	SubcircuitName       string
	SubcircuitPins       []string
	SubcircuitDefinition string
}

// Terminals returns the schematic terminal count of this instance.
func (c *Component) Terminals() int {
	return catalog.Terminals(c.Type, len(c.SubcircuitPins))
}

// Wire connects two component terminals. Waypoints are routing geometry
// only and carry no electrical meaning.
type Wire struct {
	StartID       string
	StartTerminal int
	EndID         string
	EndTerminal   int
	Waypoints     []catalog.Point
}

// Terminal identifies one connection point on one component.
type Terminal struct {
	ComponentID string
	Index       int
}

func (t Terminal) String() string {
	return fmt.Sprintf("%s.%d", t.ComponentID, t.Index)
}

// Node is a set of electrically identical terminals.
type Node struct {
	Terminals   []Terminal
	WireIndices []int
	IsGround    bool
	AutoLabel   string
	CustomLabel string
}

// Label returns the SPICE-visible node name: "0" for ground, the custom
// label when set, otherwise the derived auto label.
func (n *Node) Label() string {
	if n.IsGround {
		return "0"
	}
	if n.CustomLabel != "" {
		return n.CustomLabel
	}
	return n.AutoLabel
}

// Contains reports whether the node holds the given terminal.
func (n *Node) Contains(t Terminal) bool {
	for _, x := range n.Terminals {
		if x == t {
			return true
		}
	}
	return false
}

package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"spicecad/pkg/catalog"
)

// Circuit is the in-memory aggregate of components, wires and derived
// nodes. Nodes and the terminal lookup are rebuilt by RebuildNodes after
// every structural change; they are never edited directly.
type Circuit struct {
	Title      string
	Components map[string]*Component
	Wires      []*Wire

	Nodes          []*Node
	terminalToNode map[Terminal]int

	// SubcircuitDefs holds raw ".subckt ... .ends" bodies by name.
	SubcircuitDefs map[string]string

	// Counters tracks the highest numeric suffix seen per prefix, for ID
	// auto-generation by the editor layer.
	Counters map[string]int
}

func New(title string) *Circuit {
	return &Circuit{
		Title:          title,
		Components:     make(map[string]*Component),
		terminalToNode: make(map[Terminal]int),
		SubcircuitDefs: make(map[string]string),
		Counters:       make(map[string]int),
	}
}

// AddComponent inserts a component. The ID must be unused.
func (c *Circuit) AddComponent(comp *Component) error {
	if comp.ID == "" {
		return fmt.Errorf("component has no ID")
	}
	if _, exists := c.Components[comp.ID]; exists {
		return fmt.Errorf("duplicate component ID %s", comp.ID)
	}
	c.Components[comp.ID] = comp
	c.bumpCounter(comp.ID)
	return nil
}

func (c *Circuit) bumpCounter(id string) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return
	}
	prefix := strings.ToUpper(id[:i])
	if n, err := strconv.Atoi(id[i:]); err == nil && n > c.Counters[prefix] {
		c.Counters[prefix] = n
	}
}

// RemoveComponent deletes a component and every wire that touches it.
func (c *Circuit) RemoveComponent(id string) error {
	if _, ok := c.Components[id]; !ok {
		return fmt.Errorf("no component %s", id)
	}
	delete(c.Components, id)
	kept := c.Wires[:0]
	for _, w := range c.Wires {
		if w.StartID != id && w.EndID != id {
			kept = append(kept, w)
		}
	}
	c.Wires = kept
	return nil
}

// AddWire connects two terminals. Both endpoints must name existing
// components and in-range terminal indices.
func (c *Circuit) AddWire(w *Wire) error {
	for _, end := range []struct {
		id   string
		term int
	}{{w.StartID, w.StartTerminal}, {w.EndID, w.EndTerminal}} {
		comp, ok := c.Components[end.id]
		if !ok {
			return fmt.Errorf("wire references unknown component %s", end.id)
		}
		if end.term < 0 || end.term >= comp.Terminals() {
			return fmt.Errorf("terminal %d out of range for %s (%d terminals)",
				end.term, end.id, comp.Terminals())
		}
	}
	c.Wires = append(c.Wires, w)
	return nil
}

// RemoveWire deletes the wire at the given index.
func (c *Circuit) RemoveWire(index int) error {
	if index < 0 || index >= len(c.Wires) {
		return fmt.Errorf("wire index %d out of range", index)
	}
	c.Wires = append(c.Wires[:index], c.Wires[index+1:]...)
	return nil
}

// NodeFor returns the node index for a terminal, or -1 when the terminal
// is unknown. Valid only after RebuildNodes.
func (c *Circuit) NodeFor(id string, terminal int) int {
	idx, ok := c.terminalToNode[Terminal{id, terminal}]
	if !ok {
		return -1
	}
	return idx
}

// SortedIDs returns component IDs in sorted order, for deterministic
// iteration.
func (c *Circuit) SortedIDs() []string {
	ids := make([]string, 0, len(c.Components))
	for id := range c.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextID generates an unused ID with the catalog prefix for the type.
// Ground components get "GND<n>".
func (c *Circuit) NextID(t catalog.ComponentType) string {
	prefix := catalog.Prefix(t)
	if t == catalog.Ground {
		prefix = "GND"
	}
	for {
		c.Counters[prefix]++
		id := fmt.Sprintf("%s%d", prefix, c.Counters[prefix])
		if _, exists := c.Components[id]; !exists {
			return id
		}
	}
}

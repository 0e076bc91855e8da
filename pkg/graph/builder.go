package graph

import (
	"sort"

	"spicecad/pkg/catalog"
)

// RebuildNodes recomputes the electrical node partition from components
// and wires. It is idempotent and must run after every mutation, before
// anything reads Nodes or NodeFor.
func (c *Circuit) RebuildNodes() {
	uf := NewUnionFind()

	// Register every terminal in sorted order so group discovery order
	// follows the lowest-sorted terminal of each node.
	ids := c.SortedIDs()
	for _, id := range ids {
		comp := c.Components[id]
		for t := 0; t < comp.Terminals(); t++ {
			uf.Add(Terminal{id, t}.String())
		}
	}
	for _, w := range c.Wires {
		uf.Union(Terminal{w.StartID, w.StartTerminal}.String(),
			Terminal{w.EndID, w.EndTerminal}.String())
	}

	terminals := make(map[string]Terminal)
	for _, id := range ids {
		comp := c.Components[id]
		for t := 0; t < comp.Terminals(); t++ {
			term := Terminal{id, t}
			terminals[term.String()] = term
		}
	}

	c.Nodes = nil
	c.terminalToNode = make(map[Terminal]int)
	for _, group := range uf.Groups() {
		node := &Node{}
		for _, key := range group {
			term := terminals[key]
			node.Terminals = append(node.Terminals, term)
			if c.Components[term.ComponentID].Type == catalog.Ground {
				node.IsGround = true
			}
		}
		sort.Slice(node.Terminals, func(i, j int) bool {
			a, b := node.Terminals[i], node.Terminals[j]
			if a.ComponentID != b.ComponentID {
				return a.ComponentID < b.ComponentID
			}
			return a.Index < b.Index
		})
		idx := len(c.Nodes)
		c.Nodes = append(c.Nodes, node)
		for _, term := range node.Terminals {
			c.terminalToNode[term] = idx
		}
	}

	for wi, w := range c.Wires {
		idx, ok := c.terminalToNode[Terminal{w.StartID, w.StartTerminal}]
		if ok {
			c.Nodes[idx].WireIndices = append(c.Nodes[idx].WireIndices, wi)
		}
	}

	labelNodes(c.Nodes)
}

// labelNodes assigns auto labels in discovery order: ground nodes are
// "0", the rest get nodeA, nodeB, ... continuing nodeAA past 26.
func labelNodes(nodes []*Node) {
	n := 0
	for _, node := range nodes {
		if node.IsGround {
			node.AutoLabel = "0"
			continue
		}
		node.AutoLabel = "node" + alphaSuffix(n)
		n++
	}
}

func alphaSuffix(n int) string {
	s := ""
	for {
		s = string(rune('A'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			return s
		}
	}
}

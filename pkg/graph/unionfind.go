package graph

// UnionFind is an index-arena disjoint-set: elements are registered by
// string key and tracked in parent/rank slices. Instances are local to a
// single rebuild or import pass, never persisted.
type UnionFind struct {
	index  map[string]int
	keys   []string
	parent []int
	rank   []int
}

func NewUnionFind() *UnionFind {
	return &UnionFind{index: make(map[string]int)}
}

// Add registers a key and returns its index. Adding an existing key is a
// no-op.
func (uf *UnionFind) Add(key string) int {
	if i, ok := uf.index[key]; ok {
		return i
	}
	i := len(uf.parent)
	uf.index[key] = i
	uf.keys = append(uf.keys, key)
	uf.parent = append(uf.parent, i)
	uf.rank = append(uf.rank, 0)
	return i
}

func (uf *UnionFind) find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for i != root {
		uf.parent[i], i = root, uf.parent[i]
	}
	return root
}

// Union merges the sets containing the two keys, registering them first
// if needed.
func (uf *UnionFind) Union(a, b string) {
	ra, rb := uf.find(uf.Add(a)), uf.find(uf.Add(b))
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// Root returns the representative index for the key.
func (uf *UnionFind) Root(key string) int {
	return uf.find(uf.Add(key))
}

// Groups collects the partition as key slices, in order of the first
// registered member of each set.
func (uf *UnionFind) Groups() [][]string {
	byRoot := make(map[int]int)
	var groups [][]string
	for i, key := range uf.keys {
		root := uf.find(i)
		gi, ok := byRoot[root]
		if !ok {
			gi = len(groups)
			byRoot[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], key)
	}
	return groups
}

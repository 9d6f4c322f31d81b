package noticeboard

// orderedGroups is a map that remembers first-insertion order of its keys
type orderedGroups[K comparable, V any] struct {
	keys  []K
	items map[K]*V
}

func newOrderedGroups[K comparable, V any]() *orderedGroups[K, V] {
	return &orderedGroups[K, V]{items: make(map[K]*V)}
}

func (g *orderedGroups[K, V]) get(k K) (*V, bool) {
	v, ok := g.items[k]
	return v, ok
}

// seed stores v under k unless k is already present and returns the stored value
func (g *orderedGroups[K, V]) seed(k K, v V) *V {
	if existing, ok := g.items[k]; ok {
		return existing
	}
	g.keys = append(g.keys, k)
	g.items[k] = &v
	return &v
}

func (g *orderedGroups[K, V]) values() []V {
	out := make([]V, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, *g.items[k])
	}
	return out
}

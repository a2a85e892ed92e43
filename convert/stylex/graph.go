package stylex

// PropEntry is a single property of a Graph.
type PropEntry struct {
	Name  string
	Value Node
}

// NamespaceEntry is a nested style object (pseudo-element or non-media
// at-rule) kept structurally apart from conditional values.
type NamespaceEntry struct {
	Key   string
	Graph *Graph
}

// Graph is an ordered style object: property values plus nested namespaces.
type Graph struct {
	props      []PropEntry
	namespaces []NamespaceEntry
}

// NewGraph creates empty style object.
func NewGraph() *Graph {
	return &Graph{}
}

// Get returns value of prop.
func (g *Graph) Get(prop string) (Node, bool) {
	for _, p := range g.props {
		if p.Name == prop {
			return p.Value, true
		}
	}
	return nil, false
}

// Set stores value of prop replacing any previous one in place.
func (g *Graph) Set(prop string, v Node) {
	for i := range g.props {
		if g.props[i].Name == prop {
			g.props[i].Value = v
			return
		}
	}
	g.props = append(g.props, PropEntry{Name: prop, Value: v})
}

// Properties returns properties in insertion order. Returned slice must not
// be modified.
func (g *Graph) Properties() []PropEntry {
	return g.props
}

// Namespaces returns nested namespaces in insertion order.
func (g *Graph) Namespaces() []NamespaceEntry {
	return g.namespaces
}

// Namespace returns nested namespace for key, creating it when missing.
func (g *Graph) Namespace(key string) *Graph {
	if ns := g.Lookup(key); ns != nil {
		return ns
	}
	ns := NewGraph()
	g.namespaces = append(g.namespaces, NamespaceEntry{Key: key, Graph: ns})
	return ns
}

// Lookup returns existing namespace for key or nil.
func (g *Graph) Lookup(key string) *Graph {
	for _, ns := range g.namespaces {
		if ns.Key == key {
			return ns.Graph
		}
	}
	return nil
}

// IsEmpty returns true when graph has neither properties nor namespaces with
// content.
func (g *Graph) IsEmpty() bool {
	if g == nil {
		return true
	}
	if len(g.props) > 0 {
		return false
	}
	for _, ns := range g.namespaces {
		if !ns.Graph.IsEmpty() {
			return false
		}
	}
	return true
}

// SetBase writes unconditional value. When prop already has conditional
// branches only the default branch is replaced.
func (g *Graph) SetBase(prop string, v StyleValue) {
	existing, ok := g.Get(prop)
	if !ok {
		g.Set(prop, v)
		return
	}
	if m, isMap := existing.(*ConditionalMap); isMap {
		setLeafDefault(m, v)
		return
	}
	g.Set(prop, v)
}

// SetConditional writes value under condition key. The first conditional
// write on a property turns it into a ConditionalMap whose default is the
// previous plain value (or Null).
func (g *Graph) SetConditional(prop string, key ConditionKey, v StyleValue) {
	m := g.conditional(prop)
	if inner, ok := m.Get(key); ok {
		if nested, isMap := inner.(*ConditionalMap); isMap {
			setLeafDefault(nested, v)
			return
		}
	}
	m.Set(key, v)
}

// SetNested writes value under outer then inner condition, producing
// prop -> outer -> {default, inner: value}. Inner default is backfilled from
// the current default of prop the first time outer is created.
func (g *Graph) SetNested(prop string, outer, inner ConditionKey, v StyleValue) {
	m := g.conditional(prop)
	existing, ok := m.Get(outer)
	var nested *ConditionalMap
	switch {
	case !ok:
		nested = NewConditionalMap(leafDefault(m.Default()))
		m.Set(outer, nested)
	default:
		if cm, isMap := existing.(*ConditionalMap); isMap {
			nested = cm
		} else {
			nested = NewConditionalMap(existing)
			m.Set(outer, nested)
		}
	}
	nested.Set(inner, v)
}

func (g *Graph) conditional(prop string) *ConditionalMap {
	existing, ok := g.Get(prop)
	if ok {
		if m, isMap := existing.(*ConditionalMap); isMap {
			return m
		}
	}
	m := NewConditionalMap(existing)
	g.Set(prop, m)
	return m
}

func setLeafDefault(m *ConditionalMap, v StyleValue) {
	for {
		inner, ok := m.Default().(*ConditionalMap)
		if !ok {
			m.SetDefault(v)
			return
		}
		m = inner
	}
}

// Merge copies all properties and namespaces of other into g in order,
// later writes winning.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for _, p := range other.props {
		g.Set(p.Name, cloneNode(p.Value))
	}
	for _, ns := range other.namespaces {
		g.Namespace(ns.Key).Merge(ns.Graph)
	}
}

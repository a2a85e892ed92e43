package stylex

// Node is a property value in the style graph: either a StyleValue or a
// nested *ConditionalMap.
type Node interface {
	node()
}

// ConditionKey is a key of a ConditionalMap. Implementations are DefaultKey,
// PseudoKey, MediaKey and ComputedKey.
type ConditionKey interface {
	conditionKey()
	// ID uniquely identifies key inside a map.
	ID() string
	String() string
}

// DefaultKey is the unconditional branch.
type DefaultKey struct{}

// PseudoKey is a pseudo-class condition, e.g. ":hover" or
// ":focus:not(:disabled)".
type PseudoKey string

// MediaKey is a media query condition, e.g. "@media (max-width: 600px)".
type MediaKey string

// ComputedKey is a condition produced by an expression the emitter places
// as computed object key.
type ComputedKey struct {
	Expr    string
	Imports []Import
}

func (DefaultKey) conditionKey()  {}
func (PseudoKey) conditionKey()   {}
func (MediaKey) conditionKey()    {}
func (ComputedKey) conditionKey() {}

func (DefaultKey) ID() string    { return "default" }
func (k PseudoKey) ID() string   { return "pseudo:" + string(k) }
func (k MediaKey) ID() string    { return "media:" + string(k) }
func (k ComputedKey) ID() string { return "computed:" + k.Expr }

func (DefaultKey) String() string    { return "default" }
func (k PseudoKey) String() string   { return string(k) }
func (k MediaKey) String() string    { return string(k) }
func (k ComputedKey) String() string { return "[" + k.Expr + "]" }

// CondEntry is a single key/value pair of ConditionalMap.
type CondEntry struct {
	Key   ConditionKey
	Value Node
}

// ConditionalMap is an ordered map from condition to value. Default branch
// is always present and always first.
type ConditionalMap struct {
	entries []CondEntry
}

func (*ConditionalMap) node() {}

// NewConditionalMap creates map with the given default branch. A nil default
// is stored as Null.
func NewConditionalMap(def Node) *ConditionalMap {
	if def == nil {
		def = Null{}
	}
	return &ConditionalMap{entries: []CondEntry{{Key: DefaultKey{}, Value: def}}}
}

// Default returns value of the default branch.
func (m *ConditionalMap) Default() Node {
	return m.entries[0].Value
}

// SetDefault replaces value of the default branch.
func (m *ConditionalMap) SetDefault(v Node) {
	if v == nil {
		v = Null{}
	}
	m.entries[0].Value = v
}

// Get returns value stored under key.
func (m *ConditionalMap) Get(key ConditionKey) (Node, bool) {
	if i := m.index(key); i >= 0 {
		return m.entries[i].Value, true
	}
	return nil, false
}

// Set stores value under key. Existing keys keep their position.
func (m *ConditionalMap) Set(key ConditionKey, v Node) {
	if v == nil {
		v = Null{}
	}
	if i := m.index(key); i >= 0 {
		m.entries[i].Value = v
		return
	}
	m.entries = append(m.entries, CondEntry{Key: key, Value: v})
}

// Len returns number of branches including default.
func (m *ConditionalMap) Len() int {
	return len(m.entries)
}

// Entries returns branches in insertion order, default first. Returned slice
// must not be modified.
func (m *ConditionalMap) Entries() []CondEntry {
	return m.entries
}

// Keys returns branch keys in insertion order.
func (m *ConditionalMap) Keys() []ConditionKey {
	keys := make([]ConditionKey, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *ConditionalMap) index(key ConditionKey) int {
	id := key.ID()
	for i, e := range m.entries {
		if e.Key.ID() == id {
			return i
		}
	}
	return -1
}

// Clone returns deep copy of the map.
func (m *ConditionalMap) Clone() *ConditionalMap {
	out := &ConditionalMap{entries: make([]CondEntry, len(m.entries))}
	for i, e := range m.entries {
		out.entries[i] = CondEntry{Key: e.Key, Value: cloneNode(e.Value)}
	}
	return out
}

func cloneNode(n Node) Node {
	if m, ok := n.(*ConditionalMap); ok {
		return m.Clone()
	}
	return n
}

// leafDefault returns innermost default value of a node.
func leafDefault(n Node) StyleValue {
	for {
		switch v := n.(type) {
		case *ConditionalMap:
			n = v.Default()
		case StyleValue:
			return v
		default:
			return Null{}
		}
	}
}

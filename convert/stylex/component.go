package stylex

import (
	"strings"

	"sc2sx/css"
)

// ComponentInfo describes a styled component declared in a source file.
type ComponentInfo struct {
	LocalName string
	StyleKey  string
	Element   string // base element, empty when the component wraps another component
	Exported  bool
}

// Key returns style key of the component, derived from local name when not
// set explicitly.
func (c ComponentInfo) Key() string {
	if c.StyleKey != "" {
		return c.StyleKey
	}
	return styleKeyFor(c.LocalName)
}

func styleKeyFor(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// ComponentTable is a read-only table of components declared in one file. It
// is safe for concurrent use once built.
type ComponentTable struct {
	list   []ComponentInfo
	byName map[string]int
}

// NewComponentTable builds table from components in declaration order.
// Later duplicates replace earlier ones.
func NewComponentTable(components ...ComponentInfo) *ComponentTable {
	t := &ComponentTable{byName: make(map[string]int, len(components))}
	for _, c := range components {
		if i, ok := t.byName[c.LocalName]; ok {
			t.list[i] = c
			continue
		}
		t.byName[c.LocalName] = len(t.list)
		t.list = append(t.list, c)
	}
	return t
}

// Lookup finds component by local name.
func (t *ComponentTable) Lookup(name string) (ComponentInfo, bool) {
	if t == nil {
		return ComponentInfo{}, false
	}
	i, ok := t.byName[name]
	if !ok {
		return ComponentInfo{}, false
	}
	return t.list[i], true
}

// ByElement returns components rendering the given element, in declaration
// order, excluding the named one.
func (t *ComponentTable) ByElement(tag, exclude string) []ComponentInfo {
	if t == nil {
		return nil
	}
	var out []ComponentInfo
	for _, c := range t.list {
		if c.LocalName != exclude && strings.EqualFold(c.Element, tag) {
			out = append(out, c)
		}
	}
	return out
}

// All returns all components in declaration order.
func (t *ComponentTable) All() []ComponentInfo {
	if t == nil {
		return nil
	}
	return t.list
}

// ChildKind classifies children found at usage sites of a component.
type ChildKind int

const (
	ChildElement ChildKind = iota
	ChildComponent
	ChildExpression
	ChildPlaceholder // forwarded children
	ChildText
)

// Child is a single child of a component usage.
type Child struct {
	Kind  ChildKind
	Name  string // tag name or component local name
	Empty bool   // expression child without content, e.g. {/* comment */}
}

// Usage is a single place where the declaring component is rendered.
type Usage struct {
	Children []Child
}

// Declaration is a styled component declaration handed to the engine.
type Declaration struct {
	ComponentInfo
	Rules  []css.Rule // top level rules in source order
	Slots  Slots
	Usages []Usage
}

func (d *Declaration) hasDynamicChildren() bool {
	for _, u := range d.Usages {
		for _, c := range u.Children {
			switch c.Kind {
			case ChildPlaceholder:
				return true
			case ChildExpression:
				if !c.Empty {
					return true
				}
			}
		}
	}
	return false
}

func (d *Declaration) mixesPlainElement(component, tag string) bool {
	var hasComponent, hasPlain bool
	for _, u := range d.Usages {
		for _, c := range u.Children {
			switch {
			case c.Kind == ChildComponent && c.Name == component:
				hasComponent = true
			case c.Kind == ChildElement && strings.EqualFold(c.Name, tag):
				hasPlain = true
			}
		}
	}
	return hasComponent && hasPlain
}

package stylex

import (
	"fmt"
	"strings"
)

// Classification is the typed shape of a rule selector. Implementations are
// Root, PseudoClassList, PseudoElement, Attribute, Media, ComponentRelation,
// SelfSibling, InterpolatedPseudo and Unsupported.
type Classification interface {
	classification()
	String() string
}

// Root targets the component itself.
type Root struct{}

// PseudoClassList targets the component in any of the listed states. Each
// name is a complete pseudo-class chain, e.g. ":focus:not(:disabled)".
type PseudoClassList struct {
	Names []string
}

// PseudoElement targets a pseudo-element, optionally of the component in
// listed states (&:hover::after).
type PseudoElement struct {
	Name    string
	Pseudos []string
}

// AttributeKind enumerates attribute patterns with wrapper support.
type AttributeKind int

const (
	AttrCheckbox AttributeKind = iota
	AttrRadio
	AttrReadonly
	AttrTargetBlank
	AttrHrefPrefix
	AttrHrefSuffix
)

func (k AttributeKind) String() string {
	switch k {
	case AttrCheckbox:
		return "checkbox"
	case AttrRadio:
		return "radio"
	case AttrReadonly:
		return "readonly"
	case AttrTargetBlank:
		return "target-blank"
	case AttrHrefPrefix:
		return "href-prefix"
	case AttrHrefSuffix:
		return "href-suffix"
	default:
		return fmt.Sprintf("attribute(%d)", int(k))
	}
}

// Attribute targets the component when it carries an attribute. Matching
// declarations go to a separate wrapper bucket named with Suffix.
type Attribute struct {
	Kind          AttributeKind
	Suffix        string
	Value         string // matched attribute value for href patterns
	PseudoElement string
}

// Media is a root selector under a media query.
type Media struct {
	Text string
}

// RelationDirection tells which side of a component relation carries the
// declarations.
type RelationDirection int

const (
	// AncestorPseudoOnSelf is ${Other}:pseudo & - declaring component is
	// styled when an ancestor component matches.
	AncestorPseudoOnSelf RelationDirection = iota
	// SelfPseudoOnDescendant is &:pseudo ${Child} - declaring component
	// styles its descendant component.
	SelfPseudoOnDescendant
	// ElementTag is &:pseudo tag - descendant given by element name.
	ElementTag
)

func (d RelationDirection) String() string {
	switch d {
	case AncestorPseudoOnSelf:
		return "ancestor"
	case SelfPseudoOnDescendant:
		return "descendant"
	case ElementTag:
		return "element"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ComponentRelation is a selector relating the declaring component to
// another one.
type ComponentRelation struct {
	Slot            int // interpolation slot of the other component, -1 for ElementTag
	TargetLocalName string
	Direction       RelationDirection
	// Pseudos are ancestor side triggers. Grouped selectors produce several.
	Pseudos     []string
	ChildPseudo string
	Tag         string // ElementTag only
}

// Combinator of a self sibling selector.
type Combinator int

const (
	Adjacent Combinator = iota
	General
)

// SelfSibling is "& + &" or "& ~ &".
type SelfSibling struct {
	Combinator Combinator
}

// InterpolatedPseudo is "&:${expr}" where the whole pseudo-class comes from
// an expression.
type InterpolatedPseudo struct {
	Slot int
}

// Unsupported selector with the reason to bail.
type Unsupported struct {
	Reason Reason
}

func (Root) classification()               {}
func (PseudoClassList) classification()    {}
func (PseudoElement) classification()      {}
func (Attribute) classification()          {}
func (Media) classification()              {}
func (ComponentRelation) classification()  {}
func (SelfSibling) classification()        {}
func (InterpolatedPseudo) classification() {}
func (Unsupported) classification()        {}

func (Root) String() string { return "root" }

func (c PseudoClassList) String() string {
	return "pseudo " + strings.Join(c.Names, ", ")
}

func (c PseudoElement) String() string {
	if len(c.Pseudos) == 0 {
		return "pseudo-element " + c.Name
	}
	return "pseudo-element " + c.Name + " on " + strings.Join(c.Pseudos, ", ")
}

func (c Attribute) String() string {
	s := "attribute " + c.Kind.String() + " (" + c.Suffix + ")"
	if c.PseudoElement != "" {
		s += " " + c.PseudoElement
	}
	return s
}

func (c Media) String() string { return "media " + c.Text }

func (c ComponentRelation) String() string {
	target := c.TargetLocalName
	if c.Direction == ElementTag {
		target = "<" + c.Tag + ">"
	}
	return fmt.Sprintf("relation %s %s pseudos=%v child=%q", c.Direction, target, c.Pseudos, c.ChildPseudo)
}

func (c SelfSibling) String() string {
	if c.Combinator == Adjacent {
		return "sibling adjacent"
	}
	return "sibling general"
}

func (c InterpolatedPseudo) String() string {
	return fmt.Sprintf("interpolated pseudo ${%d}", c.Slot)
}

func (c Unsupported) String() string { return "unsupported " + string(c.Reason) }

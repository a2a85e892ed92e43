package stylex

import "slices"

// Import is a named import the emitter has to add for resolved code.
type Import struct {
	From  string
	Names []string
}

// ImportSet is an ordered set of imports merged by module.
type ImportSet struct {
	imports []Import
}

// Add merges imports into the set keeping first-seen order.
func (s *ImportSet) Add(imports ...Import) {
	for _, imp := range imports {
		i := slices.IndexFunc(s.imports, func(e Import) bool { return e.From == imp.From })
		if i < 0 {
			s.imports = append(s.imports, Import{From: imp.From})
			i = len(s.imports) - 1
		}
		for _, n := range imp.Names {
			if !slices.Contains(s.imports[i].Names, n) {
				s.imports[i].Names = append(s.imports[i].Names, n)
			}
		}
	}
}

// List returns collected imports.
func (s *ImportSet) List() []Import {
	return s.imports
}

// Resolution is resolved code for a css variable reference.
type Resolution struct {
	Code    string
	Imports []Import
}

// SelectorKind is the kind of resolved selector interpolation.
type SelectorKind int

const (
	SelectorMedia SelectorKind = iota
	SelectorPseudoAlias
)

// SelectorResolution describes what an interpolation used as a pseudo-class
// (&:${expr}) stands for.
type SelectorResolution struct {
	Kind SelectorKind
	// Expr is the computed key expression for SelectorMedia.
	Expr string
	// Values lists pseudo-classes for SelectorPseudoAlias.
	Values []string
	// StyleSelectorExpr is the expression the emitter uses to pick an alias
	// at runtime, SelectorPseudoAlias only.
	StyleSelectorExpr string
	Imports           []Import
}

// Adapter resolves project specific references. All methods must be pure.
type Adapter interface {
	// ResolveCSSVariable maps css custom property (without leading "--") to
	// code. The second result is false when the variable is unknown.
	ResolveCSSVariable(name, fallback string, hasFallback bool) (*Resolution, bool)
	// ResolveThemePath maps theme member path (without the "theme" root) to
	// code.
	ResolveThemePath(path []string) (string, bool)
	// ResolveSelectorInterpolation resolves &:${expr} selectors. Nil result
	// means unknown.
	ResolveSelectorInterpolation(desc Descriptor) *SelectorResolution
}

// ComponentResolver is optionally implemented by adapters which know
// components declared in other files.
type ComponentResolver interface {
	ResolveComponent(name string) (ComponentInfo, bool)
}

// DescriptorKind tags slot descriptors.
type DescriptorKind int

const (
	DescOther DescriptorKind = iota
	DescIdentifier
	DescMember
	DescLiteral
	DescArrow
	DescLogical
	DescCall
)

// Descriptor is an opaque description of an interpolated expression. It
// carries just enough structure for relation and theme resolution.
type Descriptor struct {
	Kind DescriptorKind
	// Name is identifier name (DescIdentifier) or callee (DescCall).
	Name string
	// Path is member access chain, root first (DescMember).
	Path []string
	// Literal is the literal text, quoted strings keep their quotes.
	Literal string
	// Param is the arrow function parameter name, Destructured lists
	// destructured parameter fields (DescArrow).
	Param        string
	Destructured []string
	// Body of an arrow function, operands of a logical expression.
	Body, Left, Right *Descriptor
	// Operator of a logical expression ("??" or "||").
	Operator string
}

// Slots maps interpolation slot numbers to descriptors.
type Slots map[int]Descriptor

// Identifier returns identifier name of slot.
func (s Slots) Identifier(slot int) (string, bool) {
	d, ok := s[slot]
	if !ok || d.Kind != DescIdentifier || d.Name == "" {
		return "", false
	}
	return d.Name, true
}

func validImports(imports []Import) bool {
	for _, imp := range imports {
		if imp.From == "" || len(imp.Names) == 0 {
			return false
		}
		for _, n := range imp.Names {
			if n == "" {
				return false
			}
		}
	}
	return true
}

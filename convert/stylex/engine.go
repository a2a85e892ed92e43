package stylex

import (
	"context"

	"go.uber.org/zap"

	"sc2sx/css"
)

// DefaultSiblingMarker is computed key expression matching elements which
// have a marked sibling before them.
const DefaultSiblingMarker = `stylex.when.siblingBefore(":is(*)")`

// Engine converts styled component declarations into style object graphs.
// Engine is safe for concurrent use, every Convert call runs its own pass.
type Engine struct {
	log           *zap.Logger
	components    *ComponentTable
	adapter       Adapter
	siblingMarker string
}

// Option configures Engine.
type Option func(*Engine)

// WithAdapter sets resolution adapter.
func WithAdapter(a Adapter) Option {
	return func(e *Engine) {
		e.adapter = a
	}
}

// WithSiblingMarker overrides computed key expression used for self sibling
// selectors.
func WithSiblingMarker(expr string) Option {
	return func(e *Engine) {
		if expr != "" {
			e.siblingMarker = expr
		}
	}
}

// NewEngine creates engine for components declared in one file.
func NewEngine(log *zap.Logger, components *ComponentTable, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:           log.Named("stylex"),
		components:    components,
		siblingMarker: DefaultSiblingMarker,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AttributeBucket is a style object applied by an attribute wrapper.
type AttributeBucket struct {
	Key     string
	Kind    AttributeKind
	Value   string
	Element string
	Graph   *Graph
}

// PseudoAlias records pseudo-classes an interpolated selector expands to.
type PseudoAlias struct {
	Slot              int
	Values            []string
	StyleSelectorExpr string
}

// Result is the outcome of converting one declaration. When Bailed is set
// nothing but diagnostics must be used.
type Result struct {
	Component          string
	StyleKey           string
	Graph              *Graph
	Relations          []*RelationOverride
	AttributeBuckets   []*AttributeBucket
	PseudoAliases      []PseudoAlias
	NeedsDefaultMarker bool
	MarkersRequired    []string // other components which must emit default marker
	Imports            []Import
	Diagnostics        []Diagnostic
	Bailed             bool
	Reason             Reason
}

// Err returns *BailError when conversion was abandoned.
func (r *Result) Err() error {
	if !r.Bailed {
		return nil
	}
	return &BailError{Component: r.Component, Reason: r.Reason, Diagnostics: r.Diagnostics}
}

// Convert runs conversion pass for a single declaration.
func (e *Engine) Convert(decl Declaration) *Result {
	p := newPass(e, &decl)
	p.run()

	res := &Result{
		Component:   decl.LocalName,
		StyleKey:    decl.Key(),
		Diagnostics: p.bail.Diagnostics(),
		Bailed:      p.bail.Bailed(),
		Reason:      p.bail.Reason(),
	}
	if res.Bailed {
		e.log.Warn("Component left unconverted",
			zap.String("component", decl.LocalName),
			zap.String("reason", string(res.Reason)))
		return res
	}

	res.Graph = p.graph
	res.Relations = p.relations.list
	res.AttributeBuckets = p.attrs
	res.PseudoAliases = p.aliases
	res.NeedsDefaultMarker = p.needsMarker
	res.MarkersRequired = p.markers
	res.Imports = p.values.Imports().List()

	e.log.Debug("Component converted",
		zap.String("component", decl.LocalName),
		zap.Int("properties", len(p.graph.Properties())),
		zap.Int("relations", len(res.Relations)),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res
}

// ConvertAll converts declarations in order. Context is checked between
// declarations, a bail in one declaration does not affect others.
func (e *Engine) ConvertAll(ctx context.Context, decls []Declaration) ([]*Result, error) {
	results := make([]*Result, 0, len(decls))
	for _, d := range decls {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.Convert(d))
	}
	return results, nil
}

// walkRules visits rules depth first in source order.
func walkRules(rules []css.Rule, visit func(r *css.Rule)) {
	for i := range rules {
		visit(&rules[i])
		walkRules(rules[i].Rules, visit)
	}
}

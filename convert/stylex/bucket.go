package stylex

import (
	"go.uber.org/zap"

	"sc2sx/css"
)

// pass holds state of a single declaration conversion.
type pass struct {
	e      *Engine
	log    *zap.Logger
	decl   *Declaration
	bail   BailState
	values *ValueConverter

	graph       *Graph
	relations   relationTable
	attrs       []*AttributeBucket
	aliases     []PseudoAlias
	needsMarker bool
	markers     []string
}

func newPass(e *Engine, decl *Declaration) *pass {
	log := e.log.With(zap.String("component", decl.LocalName))
	return &pass{
		e:      e,
		log:    log,
		decl:   decl,
		values: NewValueConverter(log, e.adapter),
		graph:  NewGraph(),
	}
}

func (p *pass) run() {
	// Custom properties are visible to var() lookups regardless of where
	// they are declared.
	walkRules(p.decl.Rules, func(r *css.Rule) {
		if r.IsKeyframes() {
			return
		}
		for _, d := range r.Declarations {
			if d.IsCustomProperty() && !d.Value.IsInterpolated() && !css.HasPlaceholder(d.Property) {
				p.values.SetLocal(d.Property, d.Value.Raw)
			}
		}
	})

	walkRules(p.decl.Rules, func(r *css.Rule) {
		if p.bail.Bailed() {
			return
		}
		p.processRule(r)
	})
}

// routing describes where declarations of one rule go.
type routing struct {
	target *Graph         // base graph or attribute bucket graph, namespaces applied
	conds  []ConditionKey // conditions every value is stored under
	media  string         // enclosing media condition
}

func (p *pass) processRule(r *css.Rule) {
	if r.IsKeyframes() {
		p.log.Debug("Skipping keyframes rule", zap.String("selector", r.Selector))
		return
	}
	if len(r.Declarations) == 0 {
		return
	}

	cls := ClassifySelector(r.Selector, r.AtRules, p.decl.Slots)
	p.log.Debug("Rule classified", zap.String("selector", r.Selector), zap.Stringer("as", cls))

	rt := routing{target: p.namespaceFor(p.graph, r.AtRules), media: MediaText(r.AtRules)}

	switch c := cls.(type) {
	case Unsupported:
		p.bail.Bail(c.Reason, r.Loc, r.Selector)
		return

	case Root, Media:

	case PseudoClassList:
		for _, name := range c.Names {
			rt.conds = append(rt.conds, PseudoKey(name))
		}

	case PseudoElement:
		rt.target = rt.target.Namespace(c.Name)
		for _, name := range c.Pseudos {
			rt.conds = append(rt.conds, PseudoKey(name))
		}

	case Attribute:
		bucket, ok := p.attributeBucket(c, r)
		if !ok {
			return
		}
		rt.target = p.namespaceFor(bucket.Graph, r.AtRules)
		if c.PseudoElement != "" {
			rt.target = rt.target.Namespace(c.PseudoElement)
		}

	case InterpolatedPseudo:
		conds, ok := p.selectorInterpolation(c, r)
		if !ok {
			return
		}
		rt.conds = conds

	case SelfSibling:
		rt.conds = p.selfSibling(c, r)

	case ComponentRelation:
		p.relation(c, r)
		return

	default:
		p.bail.Bail(ReasonUnsupportedSelector, r.Loc, r.Selector)
		return
	}

	for _, d := range r.Declarations {
		if p.bail.Bailed() {
			return
		}
		p.route(rt, d, r)
	}
}

// namespaceFor descends into namespaces of non-media at-rules.
func (p *pass) namespaceFor(g *Graph, atRules []string) *Graph {
	for _, at := range atRules {
		if css.IsMediaAtRule(at) || css.IsKeyframesAtRule(at) {
			continue
		}
		g = g.Namespace(at)
	}
	return g
}

// route converts a single declaration and stores resulting longhands.
func (p *pass) route(rt routing, d css.Declaration, r *css.Rule) {
	switch {
	case d.IsMixin():
		p.bail.Bail(ReasonInterpolatedMixin, d.Loc, d.Value.Raw)
		return
	case css.HasPlaceholder(d.Property):
		p.bail.Bail(ReasonInterpolatedProperty, d.Loc, d.Property)
		return
	case d.IsCustomProperty():
		return
	}
	if d.Important {
		p.bail.Warn(SeverityInfo, ReasonImportantStripped, d.Loc, d.Property)
	}

	for _, lh := range p.values.Expand(d.Property, d.Value.Raw) {
		writeValue(rt.target, lh.Property, lh.Value, rt.conds, rt.media)
	}
}

// writeValue stores value under every condition, nesting media inside the
// conditions when both apply.
func writeValue(g *Graph, prop string, v StyleValue, conds []ConditionKey, media string) {
	if len(conds) == 0 {
		if media != "" {
			g.SetConditional(prop, MediaKey(media), v)
			return
		}
		g.SetBase(prop, v)
		return
	}
	for _, cond := range conds {
		if media != "" {
			g.SetNested(prop, cond, MediaKey(media), v)
			continue
		}
		g.SetConditional(prop, cond, v)
	}
}

var attributeHosts = map[AttributeKind][]string{
	AttrCheckbox:    {"input"},
	AttrRadio:       {"input"},
	AttrReadonly:    {"input", "textarea"},
	AttrTargetBlank: {"a"},
	AttrHrefPrefix:  {"a"},
	AttrHrefSuffix:  {"a"},
}

func (p *pass) attributeBucket(c Attribute, r *css.Rule) (*AttributeBucket, bool) {
	supported := false
	for _, host := range attributeHosts[c.Kind] {
		if host == p.decl.Element {
			supported = true
			break
		}
	}
	if !supported {
		p.bail.Bail(ReasonAttributeUnsupportedElement, r.Loc, r.Selector)
		return nil, false
	}

	key := p.decl.Key() + c.Suffix
	for _, b := range p.attrs {
		if b.Key == key {
			return b, true
		}
	}
	b := &AttributeBucket{Key: key, Kind: c.Kind, Value: c.Value, Element: p.decl.Element, Graph: NewGraph()}
	p.attrs = append(p.attrs, b)
	return b, true
}

// selectorInterpolation resolves &:${expr} through the adapter into
// condition keys.
func (p *pass) selectorInterpolation(c InterpolatedPseudo, r *css.Rule) ([]ConditionKey, bool) {
	desc, ok := p.decl.Slots[c.Slot]
	if !ok || p.e.adapter == nil {
		p.bail.Bail(ReasonUnresolvedSelectorInterp, r.Loc, r.Selector)
		return nil, false
	}
	res := p.e.adapter.ResolveSelectorInterpolation(desc)
	if res == nil {
		p.bail.Bail(ReasonUnresolvedSelectorInterp, r.Loc, r.Selector)
		return nil, false
	}
	if !validImports(res.Imports) {
		p.bail.Bail(ReasonUnresolvedSelectorImport, r.Loc, r.Selector)
		return nil, false
	}
	p.values.Imports().Add(res.Imports...)

	switch res.Kind {
	case SelectorMedia:
		if res.Expr == "" {
			p.bail.Bail(ReasonUnresolvedSelectorInterp, r.Loc, r.Selector)
			return nil, false
		}
		return []ConditionKey{ComputedKey{Expr: res.Expr, Imports: res.Imports}}, true

	case SelectorPseudoAlias:
		if len(res.Values) == 0 {
			p.bail.Bail(ReasonUnresolvedSelectorInterp, r.Loc, r.Selector)
			return nil, false
		}
		conds := make([]ConditionKey, 0, len(res.Values))
		for _, v := range res.Values {
			conds = append(conds, PseudoKey(v))
		}
		p.aliases = append(p.aliases, PseudoAlias{
			Slot:              c.Slot,
			Values:            res.Values,
			StyleSelectorExpr: res.StyleSelectorExpr,
		})
		return conds, true

	default:
		p.bail.Bail(ReasonUnresolvedSelectorInterp, r.Loc, r.Selector)
		return nil, false
	}
}

package stylex

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"sc2sx/css"
)

// pseudoRole tells on which side of a relation a pseudo-class triggers.
type pseudoRole int

const (
	roleAncestor pseudoRole = iota + 1
	roleChild
)

// PseudoBucket is style object applied while trigger pseudo matches. Empty
// Pseudo is unconditional.
type PseudoBucket struct {
	Pseudo string
	Graph  *Graph
}

// RelationOverride is the style one component gets because of its relation
// to another.
type RelationOverride struct {
	OverrideKey   string
	ParentKey     string
	ChildKey      string
	Direction     RelationDirection
	PseudoBuckets []PseudoBucket
	CrossFile     bool
	MarkerName    string

	roles map[string]pseudoRole
}

// Bucket returns style object for trigger pseudo, creating it when missing.
func (o *RelationOverride) Bucket(pseudo string) *Graph {
	for _, b := range o.PseudoBuckets {
		if b.Pseudo == pseudo {
			return b.Graph
		}
	}
	g := NewGraph()
	o.PseudoBuckets = append(o.PseudoBuckets, PseudoBucket{Pseudo: pseudo, Graph: g})
	return g
}

// claim records pseudo role, false when pseudo already plays the other role
// in this override.
func (o *RelationOverride) claim(pseudo string, role pseudoRole) bool {
	if pseudo == "" {
		return true
	}
	if o.roles == nil {
		o.roles = make(map[string]pseudoRole)
	}
	if prev, ok := o.roles[pseudo]; ok && prev != role {
		return false
	}
	o.roles[pseudo] = role
	return true
}

type relationTable struct {
	list []*RelationOverride
}

func (t *relationTable) get(key string) *RelationOverride {
	for _, o := range t.list {
		if o.OverrideKey == key {
			return o
		}
	}
	return nil
}

// OverrideKey names relation override "{child}In{Parent}".
func OverrideKey(childKey, parentKey string) string {
	if parentKey == "" {
		return childKey
	}
	return childKey + "In" + strings.ToUpper(parentKey[:1]) + parentKey[1:]
}

// lookupComponent finds relation target in the file, then through adapter.
func (p *pass) lookupComponent(name string) (ComponentInfo, bool, bool) {
	if c, ok := p.e.components.Lookup(name); ok {
		return c, false, true
	}
	if cr, ok := p.e.adapter.(ComponentResolver); ok {
		if c, ok := cr.ResolveComponent(name); ok {
			return c, true, true
		}
	}
	return ComponentInfo{}, false, false
}

// relation handles all component relation shapes of one rule.
func (p *pass) relation(c ComponentRelation, r *css.Rule) {
	var (
		other     ComponentInfo
		crossFile bool
		strict    = true
	)

	switch c.Direction {
	case ElementTag:
		match, ok := p.resolveElement(c, r)
		if !ok {
			return
		}
		other = match
		strict = false

	default:
		info, cross, ok := p.lookupComponent(c.TargetLocalName)
		if !ok {
			p.bail.Bail(ReasonUnknownComponent, r.Loc, r.Selector)
			return
		}
		other, crossFile = info, cross
	}

	// Declarations first, so a failed one leaves no partial override behind.
	values, ok := p.relationValues(r, strict)
	if !ok {
		return
	}

	var parent, child ComponentInfo
	switch c.Direction {
	case AncestorPseudoOnSelf:
		parent, child = other, p.decl.ComponentInfo
	default:
		parent, child = p.decl.ComponentInfo, other
	}

	key := OverrideKey(child.Key(), parent.Key())
	o := p.relations.get(key)
	fresh := o == nil
	if fresh {
		o = &RelationOverride{
			OverrideKey: key,
			ParentKey:   parent.Key(),
			ChildKey:    child.Key(),
			Direction:   c.Direction,
			CrossFile:   crossFile,
		}
	}

	triggers := c.Pseudos
	if len(triggers) == 0 {
		triggers = []string{""}
	}
	for _, t := range triggers {
		if !o.claim(t, roleAncestor) {
			p.bail.Bail(ReasonPseudoCollision, r.Loc, r.Selector)
			return
		}
	}
	if !o.claim(c.ChildPseudo, roleChild) {
		p.bail.Bail(ReasonPseudoCollision, r.Loc, r.Selector)
		return
	}

	if fresh {
		p.relations.list = append(p.relations.list, o)
	}
	if slices.ContainsFunc(triggers, func(t string) bool { return t != "" }) {
		o.MarkerName = parent.Key() + "Marker"
	}

	var conds []ConditionKey
	if c.ChildPseudo != "" {
		conds = []ConditionKey{PseudoKey(c.ChildPseudo)}
	}
	media := MediaText(r.AtRules)
	for _, t := range triggers {
		g := p.namespaceFor(o.Bucket(t), r.AtRules)
		for _, lh := range values {
			writeValue(g, lh.Property, lh.Value, conds, media)
		}
	}

	switch c.Direction {
	case AncestorPseudoOnSelf:
		if !slices.Contains(p.markers, other.LocalName) {
			p.markers = append(p.markers, other.LocalName)
		}
	default:
		p.needsMarker = true
	}

	p.log.Debug("Relation override",
		zap.String("key", key),
		zap.Stringer("direction", c.Direction),
		zap.Strings("triggers", triggers))
}

// relationValues converts declarations of a relation rule. Interpolations
// must resolve statically. In strict mode a failure bails the whole
// declaration, otherwise the property is skipped with a warning.
func (p *pass) relationValues(r *css.Rule, strict bool) ([]Longhand, bool) {
	var out []Longhand
	for _, d := range r.Declarations {
		switch {
		case d.IsMixin():
			p.bail.Bail(ReasonInterpolatedMixin, d.Loc, d.Value.Raw)
			return nil, false
		case css.HasPlaceholder(d.Property):
			p.bail.Bail(ReasonInterpolatedProperty, d.Loc, d.Property)
			return nil, false
		case d.IsCustomProperty():
			continue
		}
		if d.Important {
			p.bail.Warn(SeverityInfo, ReasonImportantStripped, d.Loc, d.Property)
		}

		for _, lh := range p.values.Expand(d.Property, d.Value.Raw) {
			raw, dynamic := dynamicText(lh.Value)
			if !dynamic {
				out = append(out, lh)
				continue
			}
			v, ok := resolveStaticValue(p.e.adapter, p.decl.Slots, lh.Property, raw)
			if ok {
				out = append(out, Longhand{Property: lh.Property, Value: v})
				continue
			}
			if strict {
				p.bail.Bail(ReasonUnresolvedRelationValue, d.Loc, d.Property+": "+d.Value.Raw)
				return nil, false
			}
			p.bail.Warn(SeverityWarning, ReasonSkippedUnresolved, d.Loc, d.Property+": "+d.Value.Raw)
		}
	}
	return out, true
}

// dynamicText returns placeholder text of a value depending on slots.
func dynamicText(v StyleValue) (string, bool) {
	switch v := v.(type) {
	case Dynamic:
		return v.ExpressionRef, true
	case Template:
		if len(v.Slots()) == 0 {
			return "", false
		}
		var b strings.Builder
		for _, s := range v.Segments {
			switch s.Kind {
			case SegmentSlot:
				b.WriteString(css.Placeholder(s.Slot))
			default:
				b.WriteString(s.Text)
			}
		}
		return b.String(), true
	default:
		return "", false
	}
}

package stylex

import (
	"go.uber.org/zap"

	"sc2sx/css"
)

// resolveElement maps "&:pseudo tag" selector onto the single component of
// the file rendering that tag. Guards are checked in a fixed order, the
// first failing one bails.
func (p *pass) resolveElement(c ComponentRelation, r *css.Rule) (ComponentInfo, bool) {
	if len(c.Pseudos) > 0 && c.ChildPseudo != "" {
		p.bail.Bail(ReasonElementBothPseudos, r.Loc, r.Selector)
		return ComponentInfo{}, false
	}
	if p.decl.Exported {
		p.bail.Bail(ReasonElementOnExported, r.Loc, r.Selector)
		return ComponentInfo{}, false
	}

	matches := p.e.components.ByElement(c.Tag, p.decl.LocalName)
	switch len(matches) {
	case 0:
		p.bail.Bail(ReasonDescendantSelectorUnresolved, r.Loc, r.Selector)
		return ComponentInfo{}, false
	case 1:
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.LocalName
		}
		p.log.Debug("Ambiguous element selector", zap.String("tag", c.Tag), zap.Strings("candidates", names))
		p.bail.Bail(ReasonAmbiguousElementSelector, r.Loc, r.Selector)
		return ComponentInfo{}, false
	}
	match := matches[0]

	if p.decl.hasDynamicChildren() {
		p.bail.Bail(ReasonElementDynamicChildren, r.Loc, r.Selector)
		return ComponentInfo{}, false
	}
	if p.decl.mixesPlainElement(match.LocalName, c.Tag) {
		p.bail.Bail(ReasonElementPlainIntrinsicConflict, r.Loc, r.Selector)
		return ComponentInfo{}, false
	}
	return match, true
}

package stylex

import "sc2sx/css"

// selfSibling turns "& + &" and "& ~ &" into the sibling computed key. There
// is no adjacent-only primitive, so "+" is matched as any previous sibling.
func (p *pass) selfSibling(c SelfSibling, r *css.Rule) []ConditionKey {
	p.needsMarker = true
	if c.Combinator == Adjacent {
		p.bail.Warn(SeverityInfo, ReasonAdjacentSiblingBroadened, r.Loc, r.Selector)
	}
	return []ConditionKey{ComputedKey{Expr: p.e.siblingMarker}}
}

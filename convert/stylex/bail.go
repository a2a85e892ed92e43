package stylex

import (
	"fmt"
	"strings"

	"sc2sx/css"
)

// Reason is a diagnostic tag.
type Reason string

// Bail reasons.
const (
	ReasonSpecificityHack               Reason = "specificity-hack"
	ReasonInterpolatedPseudo            Reason = "interpolated-pseudo"
	ReasonDescendantPseudo              Reason = "descendant-pseudo"
	ReasonGroupedSelector               Reason = "grouped-selector"
	ReasonGroupedSelectorMismatch       Reason = "grouped-selector-mismatch"
	ReasonClassSelector                 Reason = "class-selector"
	ReasonSiblingCombinator             Reason = "sibling-combinator"
	ReasonDescendantSelectorUnresolved  Reason = "descendant-selector-unresolved"
	ReasonDescendantSelector            Reason = "descendant-selector"
	ReasonAttributeUnsupportedElement   Reason = "attribute-selector-unsupported-element"
	ReasonAttributeSelector             Reason = "attribute-selector"
	ReasonUnsupportedSelector           Reason = "unsupported-selector"
	ReasonAmbiguousElementSelector      Reason = "ambiguous-element-selector"
	ReasonElementBothPseudos            Reason = "element-selector-both-pseudos"
	ReasonElementOnExported             Reason = "element-selector-on-exported-component"
	ReasonElementDynamicChildren        Reason = "element-selector-dynamic-children"
	ReasonElementPlainIntrinsicConflict Reason = "element-selector-plain-intrinsic-conflict"
	ReasonPseudoCollision               Reason = "pseudo-collision"
	ReasonUnresolvedRelationValue       Reason = "unresolved-interpolation-in-relation-override"
	ReasonUnresolvedSelectorInterp      Reason = "unresolved-selector-interpolation"
	ReasonUnresolvedSelectorImport      Reason = "unresolved-selector-interpolation-import"
	ReasonInterpolatedMixin             Reason = "interpolated-mixin"
	ReasonInterpolatedProperty          Reason = "interpolated-property"
	ReasonUnknownComponent              Reason = "unknown-component"
)

// Informational reasons, never bail.
const (
	ReasonAdjacentSiblingBroadened Reason = "adjacent-sibling-broadened"
	ReasonSkippedUnresolved        Reason = "skipped-unresolved-interpolation"
	ReasonImportantStripped        Reason = "important-stripped"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single finding of a conversion pass.
type Diagnostic struct {
	Severity Severity
	Reason   Reason
	Location css.Location
	Context  string // selector or declaration text the finding is about
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s at %s: %s", d.Severity, d.Reason, d.Location, d.Context)
}

// BailState collects diagnostics of one pass and remembers whether the pass
// has been abandoned.
type BailState struct {
	bailed      bool
	reason      Reason
	diagnostics []Diagnostic
}

// Bail abandons the pass. Only the first call has effect.
func (b *BailState) Bail(reason Reason, loc css.Location, context string) {
	if b.bailed {
		return
	}
	b.bailed = true
	b.reason = reason
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Severity: SeverityError,
		Reason:   reason,
		Location: loc,
		Context:  context,
	})
}

// Warn records a non fatal diagnostic. Ignored once the pass has bailed.
func (b *BailState) Warn(severity Severity, reason Reason, loc css.Location, context string) {
	if b.bailed {
		return
	}
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Severity: severity,
		Reason:   reason,
		Location: loc,
		Context:  context,
	})
}

// Bailed reports whether the pass has been abandoned.
func (b *BailState) Bailed() bool {
	return b.bailed
}

// Reason returns the reason of the bail, empty if not bailed.
func (b *BailState) Reason() Reason {
	return b.reason
}

// Diagnostics returns collected diagnostics in order.
func (b *BailState) Diagnostics() []Diagnostic {
	return b.diagnostics
}

// BailError presents abandoned pass as an error.
type BailError struct {
	Component   string
	Reason      Reason
	Diagnostics []Diagnostic
}

func (e *BailError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "component %q left unconverted: %s", e.Component, e.Reason)
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			fmt.Fprintf(&b, " (at %s: %s)", d.Location, d.Context)
			break
		}
	}
	return b.String()
}

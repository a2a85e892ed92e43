package stylex

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"sc2sx/css"
)

const (
	pseudoClassExpr = `:[A-Za-z-]+(?:\((?:[^()]|\([^()]*\))*\))?`
	pseudoChainExpr = `((?:` + pseudoClassExpr + `)*)`
	slotExpr        = `\$\{(\d+)\}`
)

var (
	interpolatedPseudoExact = regexp.MustCompile(`^&:` + slotExpr + `$`)
	interpolatedPseudoAny   = regexp.MustCompile(`:[^\s,]*` + slotExpr)
	descendantPseudo        = regexp.MustCompile(`&\s+:`)
	adjacentSelf            = regexp.MustCompile(`^&\s*\+\s*&$`)
	generalSelf             = regexp.MustCompile(`^&\s*~\s*&$`)

	reverseRelation = regexp.MustCompile(`^` + slotExpr + pseudoChainExpr + ` &$`)
	forwardRelation = regexp.MustCompile(`^&` + pseudoChainExpr + ` ` + slotExpr + pseudoChainExpr + `$`)
	bareRelation    = regexp.MustCompile(`^` + slotExpr + pseudoChainExpr + `$`)
	elementRelation = regexp.MustCompile(`^&` + pseudoChainExpr + ` ([A-Za-z][A-Za-z0-9]*)` + pseudoChainExpr + `$`)

	pseudoClassItem = regexp.MustCompile(`^` + pseudoClassExpr)

	attributePattern = regexp.MustCompile(`^\s*([A-Za-z-]+)\s*(?:([\^$*~|]?=)\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+)))?(?:\s+[iIsS])?\s*$`)
)

var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

// ClassifySelector classifies raw rule selector. Classification is pure:
// callers turn Unsupported results into diagnostics.
func ClassifySelector(raw string, atRules []string, slots Slots) Classification {
	sel, ok := NormalizeSelector(raw)
	if !ok {
		return Unsupported{Reason: ReasonSpecificityHack}
	}
	media := MediaText(atRules)

	if m := interpolatedPseudoExact.FindStringSubmatch(sel); m != nil {
		return InterpolatedPseudo{Slot: atoi(m[1])}
	}
	if interpolatedPseudoAny.MatchString(sel) {
		return Unsupported{Reason: ReasonInterpolatedPseudo}
	}
	if descendantPseudo.MatchString(sel) {
		return Unsupported{Reason: ReasonDescendantPseudo}
	}

	if branches := css.SplitTopLevel(sel, ','); len(branches) > 1 {
		return classifyGroup(branches, media, slots)
	}
	return classifyBranch(sel, media, slots)
}

// classifyGroup handles comma separated selectors. All branches must be
// plain pseudo-class lists, or all must relate to the same component.
func classifyGroup(branches []string, media string, slots Slots) Classification {
	parts := make([]Classification, len(branches))
	allPseudo, allRelation := true, true
	for i, b := range branches {
		parts[i] = classifyBranch(b, media, slots)
		switch parts[i].(type) {
		case PseudoClassList:
			allRelation = false
		case ComponentRelation:
			allPseudo = false
		default:
			allPseudo, allRelation = false, false
		}
	}

	switch {
	case allPseudo:
		var names []string
		for _, p := range parts {
			names = append(names, p.(PseudoClassList).Names...)
		}
		return PseudoClassList{Names: names}

	case allRelation:
		first := parts[0].(ComponentRelation)
		if first.Direction == ElementTag {
			return Unsupported{Reason: ReasonGroupedSelector}
		}
		merged := first
		withPseudo := false
		for _, p := range parts[1:] {
			rel := p.(ComponentRelation)
			if rel.TargetLocalName != first.TargetLocalName || rel.Direction != first.Direction || rel.ChildPseudo != first.ChildPseudo {
				return Unsupported{Reason: ReasonGroupedSelectorMismatch}
			}
		}
		merged.Pseudos = nil
		for _, p := range parts {
			if len(p.(ComponentRelation).Pseudos) > 0 {
				withPseudo = true
			}
		}
		if withPseudo {
			// one trigger per branch, branch without pseudo is the null trigger
			for _, p := range parts {
				rel := p.(ComponentRelation)
				if len(rel.Pseudos) == 0 {
					merged.Pseudos = append(merged.Pseudos, "")
					continue
				}
				merged.Pseudos = append(merged.Pseudos, rel.Pseudos...)
			}
		}
		return merged

	default:
		return Unsupported{Reason: ReasonGroupedSelector}
	}
}

// classifyBranch classifies a single selector without commas.
func classifyBranch(sel, media string, slots Slots) Classification {
	if sel == "" || sel == "&" {
		if media != "" {
			return Media{Text: media}
		}
		return Root{}
	}

	if strings.Contains(sel, "&.") {
		return Unsupported{Reason: ReasonClassSelector}
	}

	top := maskNested(sel)
	if strings.ContainsAny(top, "+~") {
		switch {
		case adjacentSelf.MatchString(sel):
			return SelfSibling{Combinator: Adjacent}
		case generalSelf.MatchString(sel):
			return SelfSibling{Combinator: General}
		default:
			return Unsupported{Reason: ReasonSiblingCombinator}
		}
	}

	if m := reverseRelation.FindStringSubmatch(sel); m != nil {
		return relation(slots, atoi(m[1]), AncestorPseudoOnSelf, m[2], "")
	}
	if m := forwardRelation.FindStringSubmatch(sel); m != nil {
		return relation(slots, atoi(m[2]), SelfPseudoOnDescendant, m[1], m[3])
	}
	if m := bareRelation.FindStringSubmatch(sel); m != nil {
		return relation(slots, atoi(m[1]), SelfPseudoOnDescendant, "", m[2])
	}

	if m := elementRelation.FindStringSubmatch(sel); m != nil {
		return ComponentRelation{
			Slot:        -1,
			Direction:   ElementTag,
			Pseudos:     pseudoList(m[1]),
			Tag:         strings.ToLower(m[2]),
			ChildPseudo: m[3],
		}
	}
	if strings.ContainsAny(top, " >") || !strings.HasPrefix(sel, "&") {
		return Unsupported{Reason: ReasonDescendantSelector}
	}

	return classifyCompound(sel[1:], media)
}

func relation(slots Slots, slot int, dir RelationDirection, ancestorPseudo, childPseudo string) Classification {
	name, ok := slots.Identifier(slot)
	if !ok {
		return Unsupported{Reason: ReasonUnknownComponent}
	}
	return ComponentRelation{
		Slot:            slot,
		TargetLocalName: name,
		Direction:       dir,
		Pseudos:         pseudoList(ancestorPseudo),
		ChildPseudo:     childPseudo,
	}
}

func pseudoList(chain string) []string {
	if chain == "" {
		return nil
	}
	return []string{chain}
}

// classifyCompound classifies what follows "&" in a compound selector:
// pseudo-classes, at most one pseudo-element and attribute patterns.
func classifyCompound(rest, media string) Classification {
	var (
		pseudos []string
		element string
		attrs   []string
	)

	for rest != "" {
		switch {
		case strings.HasPrefix(rest, "::"):
			if element != "" {
				return Unsupported{Reason: ReasonUnsupportedSelector}
			}
			name := leadingName(rest[2:])
			if name == "" {
				return Unsupported{Reason: ReasonUnsupportedSelector}
			}
			element = "::" + strings.ToLower(name)
			rest = rest[2+len(name):]

		case strings.HasPrefix(rest, ":"):
			item := pseudoClassItem.FindString(rest)
			if item == "" || element != "" {
				return Unsupported{Reason: ReasonUnsupportedSelector}
			}
			if name := strings.ToLower(item[1:]); legacyPseudoElements[name] {
				element = "::" + name
			} else {
				pseudos = append(pseudos, item)
			}
			rest = rest[len(item):]

		case strings.HasPrefix(rest, "["):
			end := strings.IndexByte(rest, ']')
			if end < 0 || element != "" {
				return Unsupported{Reason: ReasonUnsupportedSelector}
			}
			attrs = append(attrs, rest[1:end])
			rest = rest[end+1:]

		default:
			return Unsupported{Reason: ReasonUnsupportedSelector}
		}
	}

	switch {
	case len(attrs) > 0:
		if len(attrs) != 1 || len(pseudos) != 0 {
			return Unsupported{Reason: ReasonAttributeSelector}
		}
		attr, ok := parseAttribute(attrs[0])
		if !ok {
			return Unsupported{Reason: ReasonAttributeSelector}
		}
		attr.PseudoElement = element
		return attr

	case element != "":
		pe := PseudoElement{Name: element}
		if len(pseudos) > 0 {
			pe.Pseudos = []string{strings.Join(pseudos, "")}
		}
		return pe

	case len(pseudos) > 0:
		return PseudoClassList{Names: []string{strings.Join(pseudos, "")}}

	case media != "":
		return Media{Text: media}

	default:
		return Root{}
	}
}

func leadingName(s string) string {
	end := 0
	for end < len(s) && (s[end] == '-' || s[end] >= 'a' && s[end] <= 'z' || s[end] >= 'A' && s[end] <= 'Z') {
		end++
	}
	return s[:end]
}

// parseAttribute recognizes attribute patterns which have wrapper support.
func parseAttribute(text string) (Attribute, bool) {
	m := attributePattern.FindStringSubmatch(text)
	if m == nil {
		return Attribute{}, false
	}
	name, op := strings.ToLower(m[1]), m[2]
	value := m[3] + m[4] + m[5]

	switch {
	case name == "type" && op == "=" && strings.EqualFold(value, "checkbox"):
		return Attribute{Kind: AttrCheckbox, Suffix: "Checkbox", Value: value}, true
	case name == "type" && op == "=" && strings.EqualFold(value, "radio"):
		return Attribute{Kind: AttrRadio, Suffix: "Radio", Value: value}, true
	case name == "readonly" && op == "":
		return Attribute{Kind: AttrReadonly, Suffix: "Readonly"}, true
	case name == "target" && op == "=" && value == "_blank":
		return Attribute{Kind: AttrTargetBlank, Suffix: "External", Value: value}, true
	case name == "href" && op == "^=" && value != "":
		if suffix := identifierSuffix(value); suffix != "" {
			return Attribute{Kind: AttrHrefPrefix, Suffix: suffix, Value: value}, true
		}
	case name == "href" && op == "$=" && value != "":
		if suffix := identifierSuffix(value); suffix != "" {
			return Attribute{Kind: AttrHrefSuffix, Suffix: suffix, Value: value}, true
		}
	}
	return Attribute{}, false
}

// identifierSuffix turns attribute value into capitalized identifier part:
// "https" -> "Https", ".pdf" -> "Pdf", "mailto:" -> "Mailto".
func identifierSuffix(value string) string {
	var b strings.Builder
	upper := true
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

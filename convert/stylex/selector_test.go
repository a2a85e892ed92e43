package stylex

import (
	"reflect"
	"testing"

	"sc2sx/css"
)

func TestNormalizeSelector(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"&", "&", true},
		{"&&", "&", true},
		{"&&:hover", "&:hover", true},
		{"&&&", "&&&", false},
		{"  &:hover   span ", "&:hover span", true},
		{css.Placeholder(3) + ":hover &", "${3}:hover &", true},
		{"${ 4 } &", "${4} &", true},
	}
	for _, tt := range tests {
		got, ok := NormalizeSelector(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeSelector(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok {
			again, _ := NormalizeSelector(got)
			if again != got {
				t.Errorf("NormalizeSelector is not idempotent for %q: %q", got, again)
			}
		}
	}
}

func TestMediaText(t *testing.T) {
	if got := MediaText(nil); got != "" {
		t.Errorf("empty stack: %q", got)
	}
	got := MediaText([]string{"@media (min-width: 100px)", "@supports (display: grid)", "@media (hover: hover)"})
	if want := "@media (min-width: 100px) and (hover: hover)"; got != want {
		t.Errorf("MediaText = %q, want %q", got, want)
	}
}

func TestClassifySelector(t *testing.T) {
	slots := Slots{
		0: {Kind: DescIdentifier, Name: "Button"},
		1: {Kind: DescIdentifier, Name: "Icon"},
		2: {Kind: DescMember, Path: []string{"theme", "hover"}},
	}
	media := []string{"@media (max-width: 600px)"}

	tests := []struct {
		name    string
		sel     string
		atRules []string
		want    Classification
	}{
		{"root", "&", nil, Root{}},
		{"root under media", "&", media, Media{Text: "@media (max-width: 600px)"}},
		{"root under supports", "&", []string{"@supports (display: grid)"}, Root{}},
		{"double amp", "&&", nil, Root{}},
		{"triple amp", "&&&", nil, Unsupported{Reason: ReasonSpecificityHack}},
		{"hover", "&:hover", nil, PseudoClassList{Names: []string{":hover"}}},
		{"hover with hack", "&&:hover", nil, PseudoClassList{Names: []string{":hover"}}},
		{"pseudo chain", "&:focus:not(:disabled)", nil, PseudoClassList{Names: []string{":focus:not(:disabled)"}}},
		{"pseudo under media", "&:hover", media, PseudoClassList{Names: []string{":hover"}}},
		{"grouped pseudo", "&:hover, &:focus", nil, PseudoClassList{Names: []string{":hover", ":focus"}}},
		{"grouped with root", "&, &:hover", nil, Unsupported{Reason: ReasonGroupedSelector}},
		{"grouped with class", "&:hover, .x", nil, Unsupported{Reason: ReasonGroupedSelector}},
		{"pseudo element", "&::before", nil, PseudoElement{Name: "::before"}},
		{"legacy pseudo element", "&:after", nil, PseudoElement{Name: "::after"}},
		{"pseudo element on hover", "&:hover::after", nil, PseudoElement{Name: "::after", Pseudos: []string{":hover"}}},
		{"pseudo class after element", "&::after:hover", nil, Unsupported{Reason: ReasonUnsupportedSelector}},
		{"interpolated pseudo", "&:${2}", nil, InterpolatedPseudo{Slot: 2}},
		{"interpolated pseudo chain", "&:hover:${2}", nil, Unsupported{Reason: ReasonInterpolatedPseudo}},
		{"interpolated pseudo argument", "&:not(${2})", nil, Unsupported{Reason: ReasonInterpolatedPseudo}},
		{"descendant pseudo", "& :not(.x)", nil, Unsupported{Reason: ReasonDescendantPseudo}},
		{"class", "&.active", nil, Unsupported{Reason: ReasonClassSelector}},
		{"adjacent self", "& + &", nil, SelfSibling{Combinator: Adjacent}},
		{"general self", "&~&", nil, SelfSibling{Combinator: General}},
		{"adjacent other", "& + span", nil, Unsupported{Reason: ReasonSiblingCombinator}},
		{"nth child is not a combinator", "&:nth-child(2n+1)", nil, PseudoClassList{Names: []string{":nth-child(2n+1)"}}},
		{
			"reverse relation", "${0}:hover &", nil,
			ComponentRelation{Slot: 0, TargetLocalName: "Button", Direction: AncestorPseudoOnSelf, Pseudos: []string{":hover"}},
		},
		{
			"reverse relation without pseudo", "${0} &", nil,
			ComponentRelation{Slot: 0, TargetLocalName: "Button", Direction: AncestorPseudoOnSelf},
		},
		{
			"forward relation", "&:hover ${1}", nil,
			ComponentRelation{Slot: 1, TargetLocalName: "Icon", Direction: SelfPseudoOnDescendant, Pseudos: []string{":hover"}},
		},
		{
			"forward relation child pseudo", "& ${1}:focus", nil,
			ComponentRelation{Slot: 1, TargetLocalName: "Icon", Direction: SelfPseudoOnDescendant, ChildPseudo: ":focus"},
		},
		{
			"bare component", "${1}", nil,
			ComponentRelation{Slot: 1, TargetLocalName: "Icon", Direction: SelfPseudoOnDescendant},
		},
		{"relation to non identifier", "${2} &", nil, Unsupported{Reason: ReasonUnknownComponent}},
		{
			"grouped reverse relation", "${0}:hover &, ${0}:focus-visible &", nil,
			ComponentRelation{Slot: 0, TargetLocalName: "Button", Direction: AncestorPseudoOnSelf, Pseudos: []string{":hover", ":focus-visible"}},
		},
		{"grouped relation mismatch", "${0}:hover &, ${1}:hover &", nil, Unsupported{Reason: ReasonGroupedSelectorMismatch}},
		{"grouped pseudo and relation", "&:hover, ${0}:hover &", nil, Unsupported{Reason: ReasonGroupedSelector}},
		{
			"element tag", "&:hover span", nil,
			ComponentRelation{Slot: -1, Direction: ElementTag, Pseudos: []string{":hover"}, Tag: "span"},
		},
		{
			"element tag child pseudo", "& svg:hover", nil,
			ComponentRelation{Slot: -1, Direction: ElementTag, Tag: "svg", ChildPseudo: ":hover"},
		},
		{"descendant class", "& .icon", nil, Unsupported{Reason: ReasonDescendantSelector}},
		{"descendant id", "& #main", nil, Unsupported{Reason: ReasonDescendantSelector}},
		{"child combinator", "& > span", nil, Unsupported{Reason: ReasonDescendantSelector}},
		{"context selector", ".dark &", nil, Unsupported{Reason: ReasonDescendantSelector}},
		{"checkbox", `&[type="checkbox"]`, nil, Attribute{Kind: AttrCheckbox, Suffix: "Checkbox", Value: "checkbox"}},
		{"radio unquoted", "&[type=radio]", nil, Attribute{Kind: AttrRadio, Suffix: "Radio", Value: "radio"}},
		{"readonly", "&[readonly]", nil, Attribute{Kind: AttrReadonly, Suffix: "Readonly"}},
		{"target blank", `&[target="_blank"]`, nil, Attribute{Kind: AttrTargetBlank, Suffix: "External", Value: "_blank"}},
		{"href prefix", `&[href^="https"]`, nil, Attribute{Kind: AttrHrefPrefix, Suffix: "Https", Value: "https"}},
		{
			"href suffix with pseudo element", `&[href$=".pdf"]::after`, nil,
			Attribute{Kind: AttrHrefSuffix, Suffix: "Pdf", Value: ".pdf", PseudoElement: "::after"},
		},
		{"unknown attribute", "&[data-open]", nil, Unsupported{Reason: ReasonAttributeSelector}},
		{"attribute with pseudo class", "&[readonly]:hover", nil, Unsupported{Reason: ReasonAttributeSelector}},
		{"garbage", "&*", nil, Unsupported{Reason: ReasonUnsupportedSelector}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySelector(tt.sel, tt.atRules, slots)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClassifySelector(%q) = %#v, want %#v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestClassifySelector_Pure(t *testing.T) {
	slots := Slots{0: {Kind: DescIdentifier, Name: "Button"}}
	first := ClassifySelector("${0}:hover &", nil, slots)
	second := ClassifySelector("${0}:hover &", nil, slots)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification must be deterministic: %v vs %v", first, second)
	}
}

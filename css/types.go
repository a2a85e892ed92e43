package css

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Interpolations in template CSS are replaced by numbered placeholders
// before the text reaches the parser. The canonical form is a plain CSS
// identifier so the tokenizer treats it like any other word.
const (
	placeholderPrefix = "__SC_EXPR_"
	placeholderSuffix = "__"
)

var (
	placeholderPattern = regexp.MustCompile(`__SC_EXPR_(\d+)__`)
	// ${3} style markers used by hand written inputs
	templateSlotPattern = regexp.MustCompile(`\$\{\s*(\d+)\s*\}`)
)

// Placeholder returns canonical placeholder text for interpolation slot.
func Placeholder(slot int) string {
	return placeholderPrefix + strconv.Itoa(slot) + placeholderSuffix
}

// ExpandPlaceholders rewrites "${n}" markers into canonical placeholders.
func ExpandPlaceholders(text string) string {
	return templateSlotPattern.ReplaceAllString(text, placeholderPrefix+"${1}"+placeholderSuffix)
}

// FindPlaceholders returns byte offsets ([start, end) pairs) and slot numbers
// of all placeholders in s, in order of appearance.
func FindPlaceholders(s string) (spans [][2]int, slots []int) {
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(s, -1) {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil {
			continue
		}
		spans = append(spans, [2]int{m[0], m[1]})
		slots = append(slots, n)
	}
	return spans, slots
}

// HasPlaceholder reports whether s contains at least one placeholder.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, placeholderPrefix) && placeholderPattern.MatchString(s)
}

// Location points to a span of the original template text.
type Location struct {
	Offset int // Byte offset of the first character
	Length int // Span length in bytes
	Line   int // 1-based line
	Column int // 1-based column (bytes)
}

func (l Location) String() string {
	if l.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// PartKind distinguishes static text from interpolation slot references.
type PartKind int

const (
	PartText PartKind = iota
	PartSlot
)

// Part is a single segment of an interpolated value.
type Part struct {
	Kind PartKind
	Text string // static text, PartText only
	Slot int    // slot number, PartSlot only
}

// Value is a property value as written in the template. Static values have
// no slot parts.
type Value struct {
	Raw   string // Value text with canonical placeholders
	Parts []Part // Raw split into text and slot segments
}

// NewValue splits raw value text into parts.
func NewValue(raw string) Value {
	v := Value{Raw: raw}
	spans, slots := FindPlaceholders(raw)
	if len(spans) == 0 {
		if raw != "" {
			v.Parts = []Part{{Kind: PartText, Text: raw}}
		}
		return v
	}
	pos := 0
	for i, sp := range spans {
		if sp[0] > pos {
			v.Parts = append(v.Parts, Part{Kind: PartText, Text: raw[pos:sp[0]]})
		}
		v.Parts = append(v.Parts, Part{Kind: PartSlot, Slot: slots[i]})
		pos = sp[1]
	}
	if pos < len(raw) {
		v.Parts = append(v.Parts, Part{Kind: PartText, Text: raw[pos:]})
	}
	return v
}

// IsInterpolated returns true if the value references at least one slot.
func (v Value) IsInterpolated() bool {
	for _, p := range v.Parts {
		if p.Kind == PartSlot {
			return true
		}
	}
	return false
}

// Slots returns referenced slot numbers in order of appearance.
func (v Value) Slots() []int {
	var out []int
	for _, p := range v.Parts {
		if p.Kind == PartSlot {
			out = append(out, p.Slot)
		}
	}
	return out
}

// SingleSlot returns the slot number when the whole value is exactly one
// interpolation.
func (v Value) SingleSlot() (int, bool) {
	if len(v.Parts) == 1 && v.Parts[0].Kind == PartSlot {
		return v.Parts[0].Slot, true
	}
	return 0, false
}

// Declaration is a single property declaration inside a rule.
type Declaration struct {
	Property        string // Lower-cased property name, custom properties keep their case
	Value           Value
	Important       bool
	LeadingComment  string
	TrailingComment string
	Loc             Location
}

// IsCustomProperty returns true for "--name: value" declarations.
func (d Declaration) IsCustomProperty() bool {
	return strings.HasPrefix(d.Property, "--")
}

// IsMixin returns true for a bare interpolation used in place of a
// declaration ("${mixin};").
func (d Declaration) IsMixin() bool {
	return d.Property == ""
}

// Rule is a block of declarations with the selector it applies to. Nested
// blocks have their selectors composed with the enclosing one, so "&" always
// refers to the styled component itself.
type Rule struct {
	Selector     string        // Composed selector, "&" for the component root
	Declarations []Declaration // Declarations in source order
	Rules        []Rule        // Nested rules in source order
	AtRules      []string      // Enclosing at-rule preludes, outermost first
	Loc          Location      // Selector (or at-rule prelude) span
}

// IsKeyframes returns true if any enclosing at-rule is a @keyframes block.
func (r Rule) IsKeyframes() bool {
	for _, at := range r.AtRules {
		if IsKeyframesAtRule(at) {
			return true
		}
	}
	return false
}

// Count returns the number of rules in the tree rooted at r, r included.
func (r Rule) Count() int {
	n := 1
	for _, c := range r.Rules {
		n += c.Count()
	}
	return n
}

// Block is a parsed CSS-in-JS template: a single root rule for the
// component with everything else nested below it.
type Block struct {
	Root     Rule
	Warnings []string // Problems found while parsing (unbalanced braces, etc.)
}

// IsMediaAtRule reports whether at-rule prelude is a @media query.
func IsMediaAtRule(at string) bool {
	return atRuleName(at) == "@media"
}

// IsKeyframesAtRule reports whether at-rule prelude starts a keyframes block
// (vendor prefixed forms included).
func IsKeyframesAtRule(at string) bool {
	return strings.HasSuffix(atRuleName(at), "keyframes")
}

// MediaQueryText returns query part of a @media prelude.
func MediaQueryText(at string) string {
	name := atRuleName(at)
	return strings.TrimSpace(at[len(name):])
}

func atRuleName(at string) string {
	at = strings.TrimSpace(at)
	end := strings.IndexAny(at, " \t\n(")
	if end < 0 {
		end = len(at)
	}
	return strings.ToLower(at[:end])
}

package stylex

import (
	"strconv"
	"strings"
)

// StyleValue is a typed value of a single style property. Implementations
// are Number, Str, Dynamic, VarRef, Template and Null.
type StyleValue interface {
	Node
	styleValue()
	// Literal returns text form of the value as it would appear in a
	// declaration (used for dumps and joins).
	Literal() string
}

// Number is a unitless numeric value.
type Number float64

// Str is a literal string value.
type Str string

// Dynamic references an interpolated expression the emitter has to keep as
// is. ExpressionRef is the value text with canonical placeholders, SlotRefs
// lists referenced slots in order of appearance.
type Dynamic struct {
	ExpressionRef string
	SlotRefs      []int
}

// VarRef is a resolved reference to a design token, Path is the code the
// adapter produced for it.
type VarRef struct {
	Path string
}

// SegmentKind distinguishes template segments.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentExpr
	SegmentSlot
)

// Segment is a part of a Template value.
type Segment struct {
	Kind SegmentKind
	Text string // literal text or resolved expression code
	Slot int    // SegmentSlot only
}

// Template is a value assembled from literal text, resolved expressions and
// interpolation slots.
type Template struct {
	Segments []Segment
}

// Null marks absence of a previous value in a conditional default.
type Null struct{}

func (Number) styleValue()   {}
func (Str) styleValue()      {}
func (Dynamic) styleValue()  {}
func (VarRef) styleValue()   {}
func (Template) styleValue() {}
func (Null) styleValue()     {}

func (Number) node()   {}
func (Str) node()      {}
func (Dynamic) node()  {}
func (VarRef) node()   {}
func (Template) node() {}
func (Null) node()     {}

func (n Number) Literal() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (s Str) Literal() string { return string(s) }

func (d Dynamic) Literal() string { return d.ExpressionRef }

func (v VarRef) Literal() string { return v.Path }

func (t Template) Literal() string {
	var b strings.Builder
	for _, s := range t.Segments {
		switch s.Kind {
		case SegmentText:
			b.WriteString(s.Text)
		case SegmentExpr:
			b.WriteString("${")
			b.WriteString(s.Text)
			b.WriteString("}")
		case SegmentSlot:
			b.WriteString("${")
			b.WriteString(strconv.Itoa(s.Slot))
			b.WriteString("}")
		}
	}
	return b.String()
}

func (Null) Literal() string { return "null" }

// Slots returns slot references of the template in order.
func (t Template) Slots() []int {
	var out []int
	for _, s := range t.Segments {
		if s.Kind == SegmentSlot {
			out = append(out, s.Slot)
		}
	}
	return out
}

// appendText adds literal text merging it with a preceding text segment.
func (t *Template) appendText(text string) {
	if text == "" {
		return
	}
	if n := len(t.Segments); n > 0 && t.Segments[n-1].Kind == SegmentText {
		t.Segments[n-1].Text += text
		return
	}
	t.Segments = append(t.Segments, Segment{Kind: SegmentText, Text: text})
}

// IsDynamic reports whether value depends on interpolated expressions.
func IsDynamic(v StyleValue) bool {
	switch v := v.(type) {
	case Dynamic:
		return true
	case Template:
		return len(v.Slots()) > 0
	case Number, Str, VarRef, Null:
		return false
	default:
		return false
	}
}

// ValuesEqual compares two style values structurally.
func ValuesEqual(a, b StyleValue) bool {
	switch a := a.(type) {
	case Number:
		b, ok := b.(Number)
		return ok && a == b
	case Str:
		b, ok := b.(Str)
		return ok && a == b
	case VarRef:
		b, ok := b.(VarRef)
		return ok && a == b
	case Null:
		_, ok := b.(Null)
		return ok
	case Dynamic:
		b, ok := b.(Dynamic)
		return ok && a.ExpressionRef == b.ExpressionRef
	case Template:
		b, ok := b.(Template)
		if !ok || len(a.Segments) != len(b.Segments) {
			return false
		}
		for i := range a.Segments {
			if a.Segments[i] != b.Segments[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

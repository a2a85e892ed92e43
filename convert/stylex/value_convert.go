package stylex

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sc2sx/css"
)

var numericPattern = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// ValueConverter converts css values of one conversion pass into typed
// style values.
type ValueConverter struct {
	log     *zap.Logger
	adapter Adapter
	locals  map[string]string
	imports *ImportSet
}

// NewValueConverter creates converter. Adapter may be nil, in which case var()
// references are resolved against local custom properties only.
func NewValueConverter(log *zap.Logger, adapter Adapter) *ValueConverter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ValueConverter{
		log:     log.Named("value-converter"),
		adapter: adapter,
		locals:  make(map[string]string),
		imports: &ImportSet{},
	}
}

// SetLocal records custom property of the converted component (name without
// leading "--").
func (c *ValueConverter) SetLocal(name, value string) {
	c.locals[strings.TrimPrefix(name, "--")] = value
}

// Imports returns imports collected from resolved references.
func (c *ValueConverter) Imports() *ImportSet {
	return c.imports
}

// Convert converts a single longhand value. Property name is in camel case.
func (c *ValueConverter) Convert(prop, raw string) StyleValue {
	raw, _ = css.StripImportant(raw)

	if css.HasPlaceholder(raw) {
		return dynamicValue(raw)
	}
	if raw == "0" {
		return Number(0)
	}
	if prop == "content" {
		if q, ok := requote(raw); ok {
			return Str(q)
		}
		return Str(raw)
	}
	if numericPattern.MatchString(raw) {
		return literalValue(raw)
	}
	if strings.Contains(raw, "var(--") {
		if v, ok := c.resolveVars(raw); ok {
			return v
		}
	}
	return Str(raw)
}

// literalValue turns static text into Number when it is numeric.
func literalValue(raw string) StyleValue {
	raw = strings.TrimSpace(raw)
	if numericPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(f)
		}
	}
	return Str(raw)
}

func dynamicValue(raw string) Dynamic {
	return Dynamic{ExpressionRef: raw, SlotRefs: css.NewValue(raw).Slots()}
}

// templateFromText builds template from text containing placeholders.
func templateFromText(raw string) Template {
	var t Template
	for _, p := range css.NewValue(raw).Parts {
		switch p.Kind {
		case css.PartText:
			t.appendText(p.Text)
		case css.PartSlot:
			t.Segments = append(t.Segments, Segment{Kind: SegmentSlot, Slot: p.Slot})
		}
	}
	return t
}

// requote converts quoted string into double quoted form with its quotes
// kept as part of the value: 'a"b' becomes "a\"b".
func requote(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	q := raw[0]
	if (q != '"' && q != '\'') || raw[len(raw)-1] != q {
		return "", false
	}
	inner := raw[1 : len(raw)-1]

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case ch == '\\' && i+1 < len(inner) && (inner[i+1] == '\'' || inner[i+1] == '"'):
			i++
			if inner[i] == '"' {
				b.WriteString(`\"`)
			} else {
				b.WriteByte('\'')
			}
		case ch == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String(), true
}

// CamelCase converts css property name into style object key: "border-top"
// becomes "borderTop", "-webkit-appearance" becomes "WebkitAppearance".
// Custom properties are returned unchanged.
func CamelCase(prop string) string {
	if strings.HasPrefix(prop, "--") || !strings.Contains(prop, "-") {
		return prop
	}
	var b strings.Builder
	for i, part := range strings.Split(prop, "-") {
		if i == 0 || part == "" {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

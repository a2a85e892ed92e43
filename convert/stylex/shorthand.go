package stylex

import (
	"regexp"
	"strings"

	"sc2sx/css"
)

// Longhand is a single property produced from a declaration.
type Longhand struct {
	Property string
	Value    StyleValue
}

var borderProperties = map[string]bool{
	"border":       true,
	"borderTop":    true,
	"borderRight":  true,
	"borderBottom": true,
	"borderLeft":   true,
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// Expand converts declaration into longhand properties the style object
// supports. Property is the css name as written, value is raw text.
func (c *ValueConverter) Expand(property, raw string) []Longhand {
	prop := CamelCase(property)
	raw, _ = css.StripImportant(raw)

	switch {
	case borderProperties[prop]:
		return c.expandBorder(prop, raw)
	case prop == "animation":
		return c.expandAnimation(raw)
	case prop == "background":
		// Only the key is renamed, value converts the same way.
		if isSimpleBackground(raw) {
			prop = "backgroundColor"
		}
	}
	// margin and padding are accepted as shorthand strings natively.
	return []Longhand{{Property: prop, Value: c.Convert(prop, raw)}}
}

func isSimpleBackground(raw string) bool {
	return !strings.Contains(raw, "url(") &&
		!strings.Contains(raw, "gradient") &&
		!strings.Contains(raw, ",") &&
		!strings.Contains(raw, "/")
}

func (c *ValueConverter) expandBorder(prop, raw string) []Longhand {
	// Entirely dynamic value can not be split, keep it whole.
	if _, ok := css.NewValue(raw).SingleSlot(); ok {
		return []Longhand{{Property: prop, Value: c.Convert(prop, raw)}}
	}

	var width, style, color string
	for _, tok := range css.SplitFields(raw) {
		switch {
		case borderStyles[strings.ToLower(tok)]:
			style = tok
		case isBorderWidth(tok):
			width = tok
		default:
			color = tok
		}
	}

	var out []Longhand
	switch {
	case width != "":
		out = append(out, Longhand{Property: prop + "Width", Value: c.Convert(prop+"Width", width)})
	case strings.EqualFold(style, "none"):
		// Reset width set elsewhere, border: none must win over it.
		out = append(out, Longhand{Property: prop + "Width", Value: Number(0)})
	}
	if style != "" {
		out = append(out, Longhand{Property: prop + "Style", Value: c.Convert(prop+"Style", style)})
	}
	if color != "" {
		out = append(out, Longhand{Property: prop + "Color", Value: c.Convert(prop+"Color", color)})
	}
	if len(out) == 0 {
		return []Longhand{{Property: prop, Value: c.Convert(prop, raw)}}
	}
	return out
}

func isBorderWidth(tok string) bool {
	switch strings.ToLower(tok) {
	case "thin", "medium", "thick":
		return true
	}
	return tok != "" && (tok[0] >= '0' && tok[0] <= '9' || tok[0] == '.')
}

// Animation longhands in output order with their initial values.
var animationLonghands = []struct {
	name    string
	initial string
}{
	{"animationName", "none"},
	{"animationDuration", "0s"},
	{"animationTimingFunction", "ease"},
	{"animationDelay", "0s"},
	{"animationIterationCount", "1"},
	{"animationDirection", "normal"},
	{"animationFillMode", "none"},
	{"animationPlayState", "running"},
}

var (
	timePattern      = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)(s|ms)$`)
	iterationPattern = regexp.MustCompile(`^\d+$`)
)

var (
	timingKeywords    = map[string]bool{"ease": true, "ease-in": true, "ease-out": true, "ease-in-out": true, "linear": true, "step-start": true, "step-end": true}
	directionKeywords = map[string]bool{"normal": true, "reverse": true, "alternate": true, "alternate-reverse": true}
	fillModeKeywords  = map[string]bool{"none": true, "forwards": true, "backwards": true, "both": true}
	playStateKeywords = map[string]bool{"running": true, "paused": true}
)

// classifyAnimationLayer assigns tokens of one animation layer to longhands.
func classifyAnimationLayer(layer string) map[string]string {
	out := make(map[string]string)
	tokens := css.SplitFields(layer)
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch {
		case timePattern.MatchString(lower):
			if _, ok := out["animationDuration"]; !ok {
				out["animationDuration"] = tok
			} else {
				out["animationDelay"] = tok
			}
		case timingKeywords[lower],
			strings.HasPrefix(lower, "cubic-bezier("),
			strings.HasPrefix(lower, "steps("),
			strings.HasPrefix(lower, "linear("):
			out["animationTimingFunction"] = tok
		case directionKeywords[lower]:
			out["animationDirection"] = tok
		case fillModeKeywords[lower] && len(tokens) > 1:
			out["animationFillMode"] = tok
		case playStateKeywords[lower]:
			out["animationPlayState"] = tok
		case lower == "infinite" || iterationPattern.MatchString(lower):
			out["animationIterationCount"] = tok
		default:
			out["animationName"] = tok
		}
	}
	return out
}

func (c *ValueConverter) expandAnimation(raw string) []Longhand {
	layers := css.SplitTopLevel(raw, ',')
	if len(layers) == 0 {
		return []Longhand{{Property: "animation", Value: c.Convert("animation", raw)}}
	}

	classified := make([]map[string]string, len(layers))
	present := make(map[string]bool)
	for i, layer := range layers {
		classified[i] = classifyAnimationLayer(layer)
		for k := range classified[i] {
			present[k] = true
		}
	}

	var out []Longhand
	for _, lh := range animationLonghands {
		if !present[lh.name] {
			continue
		}
		if len(layers) == 1 {
			out = append(out, Longhand{Property: lh.name, Value: c.Convert(lh.name, classified[0][lh.name])})
			continue
		}
		values := make([]string, len(layers))
		for i, m := range classified {
			if v, ok := m[lh.name]; ok {
				values[i] = v
			} else {
				values[i] = lh.initial
			}
		}
		joined := strings.Join(values, ", ")
		if css.HasPlaceholder(joined) {
			out = append(out, Longhand{Property: lh.name, Value: templateFromText(joined)})
			continue
		}
		out = append(out, Longhand{Property: lh.name, Value: c.Convert(lh.name, joined)})
	}
	if len(out) == 0 {
		return []Longhand{{Property: "animation", Value: c.Convert("animation", raw)}}
	}
	return out
}

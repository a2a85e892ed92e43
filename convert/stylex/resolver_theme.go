package stylex

import (
	"strings"

	"sc2sx/css"
)

const themeRoot = "theme"

// ResolveThemeAccessor resolves expression reading a theme value into code
// produced by the adapter. Supported shapes:
//
//	theme.colors.primary
//	({ theme }) => theme.colors.primary
//	(props) => props.theme.colors.primary
//
// optionally followed by "?? literal" or "|| literal". Fallbacks which are
// not literals can not be expressed statically and fail resolution.
func ResolveThemeAccessor(adapter Adapter, desc Descriptor) (string, bool) {
	if adapter == nil {
		return "", false
	}
	if desc.Kind == DescArrow {
		if desc.Body == nil {
			return "", false
		}
		return resolveThemeBody(adapter, *desc.Body, &desc)
	}
	return resolveThemeBody(adapter, desc, nil)
}

func resolveThemeBody(adapter Adapter, body Descriptor, fn *Descriptor) (string, bool) {
	switch body.Kind {
	case DescLogical:
		if (body.Operator != "??" && body.Operator != "||") || body.Left == nil || body.Right == nil {
			return "", false
		}
		if body.Right.Kind != DescLiteral {
			return "", false
		}
		left, ok := resolveThemeBody(adapter, *body.Left, fn)
		if !ok {
			return "", false
		}
		return left + " " + body.Operator + " " + body.Right.Literal, true

	case DescMember:
		path, ok := themeMemberPath(body.Path, fn)
		if !ok || len(path) == 0 {
			return "", false
		}
		return adapter.ResolveThemePath(path)

	default:
		return "", false
	}
}

// themeMemberPath strips the theme root from member path, taking accessor
// function parameters into account.
func themeMemberPath(path []string, fn *Descriptor) ([]string, bool) {
	if len(path) == 0 {
		return nil, false
	}
	if fn == nil {
		if path[0] == themeRoot {
			return path[1:], true
		}
		return nil, false
	}
	if path[0] == themeRoot {
		for _, d := range fn.Destructured {
			if d == themeRoot {
				return path[1:], true
			}
		}
		return nil, false
	}
	if fn.Param != "" && path[0] == fn.Param && len(path) > 1 && path[1] == themeRoot {
		return path[2:], true
	}
	return nil, false
}

// resolveStaticValue resolves every interpolation of value through theme
// accessors and literals. The second result is false when any slot can not
// be resolved.
func resolveStaticValue(adapter Adapter, slots Slots, prop, raw string) (StyleValue, bool) {
	v := css.NewValue(raw)
	resolved := make(map[int]Segment)
	for _, slot := range v.Slots() {
		desc, ok := slots[slot]
		if !ok {
			return nil, false
		}
		if desc.Kind == DescLiteral {
			resolved[slot] = Segment{Kind: SegmentText, Text: strings.Trim(desc.Literal, `"'`+"`")}
			continue
		}
		expr, ok := ResolveThemeAccessor(adapter, desc)
		if !ok {
			return nil, false
		}
		resolved[slot] = Segment{Kind: SegmentExpr, Text: expr}
	}

	if slot, ok := v.SingleSlot(); ok {
		seg := resolved[slot]
		if seg.Kind == SegmentText {
			if prop == "content" {
				if q, ok := requote(`"` + seg.Text + `"`); ok {
					return Str(q), true
				}
			}
			return literalValue(seg.Text), true
		}
		return VarRef{Path: seg.Text}, true
	}

	var t Template
	for _, p := range v.Parts {
		switch p.Kind {
		case css.PartText:
			t.appendText(p.Text)
		case css.PartSlot:
			seg := resolved[p.Slot]
			if seg.Kind == SegmentText {
				t.appendText(seg.Text)
			} else {
				t.Segments = append(t.Segments, seg)
			}
		}
	}
	if len(t.Segments) == 1 && t.Segments[0].Kind == SegmentText {
		return literalValue(t.Segments[0].Text), true
	}
	return t, true
}

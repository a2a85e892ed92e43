package convert

import (
	"testing"

	"sc2sx/config"
	"sc2sx/convert/stylex"
)

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		SiblingMarker: stylex.DefaultSiblingMarker,
		Workers:       2,
		Variables: map[string]config.VariableConfig{
			"brand": {Code: "colors.brand", Imports: []config.ImportConfig{{From: "./tokens.stylex", Names: []string{"colors"}}}},
			"--gap": {Code: "spacing.gap"},
		},
		Theme: map[string]string{
			"colors.primary":     "vars.primary",
			"theme.space.medium": "vars.spaceMedium",
		},
		Selectors: map[string]config.SelectorConfig{
			"hoverMedia": {Kind: config.SelectorKindMedia, Expr: "breakpoints.hover"},
			"media.wide": {Kind: config.SelectorKindMedia, Expr: "breakpoints.wide"},
			"highlight": {
				Kind:          config.SelectorKindPseudoAlias,
				Values:        []string{":hover", ":focus-visible"},
				StyleSelector: "highlightStyle",
				Imports:       []config.ImportConfig{{From: "./aliases", Names: []string{"highlightStyle"}}},
			},
		},
		Components: []config.ComponentConfig{{Name: "Card", Element: "div"}},
	}
}

func TestTableAdapter_Variables(t *testing.T) {
	a := NewTableAdapter(testEngineConfig())

	res, ok := a.ResolveCSSVariable("brand", "", false)
	if !ok || res.Code != "colors.brand" || len(res.Imports) != 1 || res.Imports[0].Names[0] != "colors" {
		t.Errorf("brand = %+v, %v", res, ok)
	}
	if res, ok := a.ResolveCSSVariable("gap", "4px", true); !ok || res.Code != "spacing.gap" {
		t.Errorf("names are stored without leading dashes, got %+v, %v", res, ok)
	}
	if _, ok := a.ResolveCSSVariable("unknown", "red", true); ok {
		t.Error("unknown variable must not resolve")
	}
}

func TestTableAdapter_Theme(t *testing.T) {
	a := NewTableAdapter(testEngineConfig())

	tests := []struct {
		path []string
		want string
		ok   bool
	}{
		{[]string{"colors", "primary"}, "vars.primary", true},
		{[]string{"space", "medium"}, "vars.spaceMedium", true},
		{[]string{"colors"}, "", false},
	}
	for _, tt := range tests {
		got, ok := a.ResolveThemePath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolveThemePath(%v) = %q, %v", tt.path, got, ok)
		}
	}
}

func TestTableAdapter_Selectors(t *testing.T) {
	a := NewTableAdapter(testEngineConfig())

	if res := a.ResolveSelectorInterpolation(stylex.Descriptor{Kind: stylex.DescIdentifier, Name: "hoverMedia"}); res == nil || res.Kind != stylex.SelectorMedia || res.Expr != "breakpoints.hover" {
		t.Errorf("hoverMedia = %+v", res)
	}
	if res := a.ResolveSelectorInterpolation(stylex.Descriptor{Kind: stylex.DescMember, Path: []string{"media", "wide"}}); res == nil || res.Expr != "breakpoints.wide" {
		t.Errorf("media.wide = %+v", res)
	}
	res := a.ResolveSelectorInterpolation(stylex.Descriptor{Kind: stylex.DescIdentifier, Name: "highlight"})
	if res == nil || res.Kind != stylex.SelectorPseudoAlias || len(res.Values) != 2 || res.StyleSelectorExpr != "highlightStyle" || len(res.Imports) != 1 {
		t.Errorf("highlight = %+v", res)
	}
	if res := a.ResolveSelectorInterpolation(stylex.Descriptor{Kind: stylex.DescLiteral, Literal: "hoverMedia"}); res != nil {
		t.Errorf("literals are never resolved, got %+v", res)
	}
	if res := a.ResolveSelectorInterpolation(stylex.Descriptor{Kind: stylex.DescIdentifier, Name: "missing"}); res != nil {
		t.Errorf("missing = %+v", res)
	}
}

func TestTableAdapter_Components(t *testing.T) {
	var a stylex.Adapter = NewTableAdapter(testEngineConfig())

	cr, ok := a.(stylex.ComponentResolver)
	if !ok {
		t.Fatal("adapter must resolve components")
	}
	c, ok := cr.ResolveComponent("Card")
	if !ok || c.LocalName != "Card" || c.Element != "div" || c.Key() != "card" {
		t.Errorf("Card = %+v, %v", c, ok)
	}
	if _, ok := cr.ResolveComponent("Button"); ok {
		t.Error("unknown component must not resolve")
	}
}

package convert

import (
	"strings"

	"sc2sx/config"
	"sc2sx/convert/stylex"
)

// TableAdapter resolves references from static tables of the configuration.
// It is read-only after creation and shared by all workers.
type TableAdapter struct {
	variables  map[string]stylex.Resolution
	theme      map[string]string
	selectors  map[string]stylex.SelectorResolution
	components map[string]stylex.ComponentInfo
}

func convertImports(in []config.ImportConfig) []stylex.Import {
	if len(in) == 0 {
		return nil
	}
	out := make([]stylex.Import, 0, len(in))
	for _, imp := range in {
		out = append(out, stylex.Import{From: imp.From, Names: imp.Names})
	}
	return out
}

// NewTableAdapter builds adapter from engine configuration.
func NewTableAdapter(cfg *config.EngineConfig) *TableAdapter {
	a := &TableAdapter{
		variables:  make(map[string]stylex.Resolution, len(cfg.Variables)),
		theme:      make(map[string]string, len(cfg.Theme)),
		selectors:  make(map[string]stylex.SelectorResolution, len(cfg.Selectors)),
		components: make(map[string]stylex.ComponentInfo, len(cfg.Components)),
	}
	for name, v := range cfg.Variables {
		a.variables[strings.TrimPrefix(name, "--")] = stylex.Resolution{Code: v.Code, Imports: convertImports(v.Imports)}
	}
	for path, code := range cfg.Theme {
		a.theme[strings.TrimPrefix(path, "theme.")] = code
	}
	for name, s := range cfg.Selectors {
		res := stylex.SelectorResolution{Imports: convertImports(s.Imports)}
		switch s.Kind {
		case config.SelectorKindMedia:
			res.Kind = stylex.SelectorMedia
			res.Expr = s.Expr
		case config.SelectorKindPseudoAlias:
			res.Kind = stylex.SelectorPseudoAlias
			res.Values = s.Values
			res.StyleSelectorExpr = s.StyleSelector
		}
		a.selectors[name] = res
	}
	for _, c := range cfg.Components {
		a.components[c.Name] = stylex.ComponentInfo{LocalName: c.Name, StyleKey: c.StyleKey, Element: c.Element}
	}
	return a
}

func (a *TableAdapter) ResolveCSSVariable(name, _ string, _ bool) (*stylex.Resolution, bool) {
	res, ok := a.variables[name]
	if !ok {
		return nil, false
	}
	return &res, true
}

func (a *TableAdapter) ResolveThemePath(path []string) (string, bool) {
	code, ok := a.theme[strings.Join(path, ".")]
	return code, ok
}

// ResolveSelectorInterpolation looks up identifiers by name and member
// expressions by their dotted path.
func (a *TableAdapter) ResolveSelectorInterpolation(desc stylex.Descriptor) *stylex.SelectorResolution {
	var key string
	switch desc.Kind {
	case stylex.DescIdentifier:
		key = desc.Name
	case stylex.DescMember:
		key = strings.Join(desc.Path, ".")
	default:
		return nil
	}
	res, ok := a.selectors[key]
	if !ok {
		return nil
	}
	return &res
}

func (a *TableAdapter) ResolveComponent(name string) (stylex.ComponentInfo, bool) {
	c, ok := a.components[name]
	return c, ok
}

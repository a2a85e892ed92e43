package stylex

import (
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"sc2sx/utils/debug"
)

// String returns human readable dump of the result.
func (r *Result) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "component %s (key %s)", r.Component, r.StyleKey)
	if r.Bailed {
		tw.Field(1, "bailed", string(r.Reason))
		dumpDiagnostics(tw, 1, r.Diagnostics)
		return tw.String()
	}

	tw.Line(1, "graph")
	dumpGraph(tw, 2, r.Graph)

	for _, o := range r.Relations {
		tw.Line(1, "relation %s (%s, parent %s, child %s)", o.OverrideKey, o.Direction, o.ParentKey, o.ChildKey)
		if o.MarkerName != "" {
			tw.Field(2, "marker", o.MarkerName)
		}
		if o.CrossFile {
			tw.Line(2, "cross-file")
		}
		for _, b := range o.PseudoBuckets {
			label := b.Pseudo
			if label == "" {
				label = "(always)"
			}
			tw.Line(2, "when %s", label)
			dumpGraph(tw, 3, b.Graph)
		}
	}

	for _, b := range r.AttributeBuckets {
		tw.Line(1, "attribute %s (%s on <%s>)", b.Key, b.Kind, b.Element)
		dumpGraph(tw, 2, b.Graph)
	}
	for _, a := range r.PseudoAliases {
		tw.Line(1, "pseudo alias ${%d} -> %s [%s]", a.Slot, strings.Join(a.Values, ", "), a.StyleSelectorExpr)
	}
	if r.NeedsDefaultMarker {
		tw.Line(1, "default marker")
	}
	if len(r.MarkersRequired) > 0 {
		markers := append([]string(nil), r.MarkersRequired...)
		sort.Sort(natural.StringSlice(markers))
		tw.Line(1, "markers required: %s", strings.Join(markers, ", "))
	}
	if len(r.Imports) > 0 {
		tw.Line(1, "imports")
		for _, imp := range sortedImports(r.Imports) {
			tw.Line(2, "%s: %s", imp.From, strings.Join(imp.Names, ", "))
		}
	}
	dumpDiagnostics(tw, 1, r.Diagnostics)
	return tw.String()
}

func sortedImports(imports []Import) []Import {
	out := append([]Import(nil), imports...)
	sort.SliceStable(out, func(i, j int) bool { return natural.Less(out[i].From, out[j].From) })
	return out
}

func dumpDiagnostics(tw *debug.TreeWriter, depth int, diags []Diagnostic) {
	if len(diags) == 0 {
		return
	}
	tw.Line(depth, "diagnostics")
	for _, d := range diags {
		tw.Line(depth+1, "%s %s at %s", d.Severity, d.Reason, d.Location)
		if d.Context != "" {
			tw.TextBlock(depth+2, "context", d.Context)
		}
	}
}

func dumpGraph(tw *debug.TreeWriter, depth int, g *Graph) {
	if g == nil {
		return
	}
	for _, p := range g.Properties() {
		dumpNode(tw, depth, p.Name, p.Value)
	}
	for _, ns := range g.Namespaces() {
		tw.Line(depth, "%s", ns.Key)
		dumpGraph(tw, depth+1, ns.Graph)
	}
}

func dumpNode(tw *debug.TreeWriter, depth int, label string, n Node) {
	switch v := n.(type) {
	case *ConditionalMap:
		tw.Line(depth, "%s", label)
		for _, e := range v.Entries() {
			dumpNode(tw, depth+1, e.Key.String(), e.Value)
		}
	case StyleValue:
		tw.Field(depth, label, FormatValue(v))
	}
}

// FormatValue renders value the way dumps and summaries show it: strings
// quoted, numbers bare, references and dynamic values marked.
func FormatValue(v StyleValue) string {
	switch v := v.(type) {
	case Number:
		return v.Literal()
	case Str:
		return strconv.Quote(string(v))
	case VarRef:
		return "ref(" + v.Path + ")"
	case Dynamic:
		return "dynamic(" + v.ExpressionRef + ")"
	case Template:
		return "`" + v.Literal() + "`"
	case Null:
		return "null"
	default:
		return "?"
	}
}

package convert

import (
	"bytes"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"

	"sc2sx/config"
	"sc2sx/convert/stylex"
)

// Values which are not plain literals are tagged so consumers can tell
// a token reference from a string.
const (
	tagRef      = "!ref"
	tagDynamic  = "!dynamic"
	tagTemplate = "!template"
)

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func tagged(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func boolean(v bool) *yaml.Node {
	return tagged("!!bool", fmt.Sprint(v))
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode}
}

func add(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

func flowList(values []string) *yaml.Node {
	s := sequence()
	s.Style = yaml.FlowStyle
	for _, v := range values {
		s.Content = append(s.Content, scalar(v))
	}
	return s
}

func valueNode(v stylex.StyleValue) *yaml.Node {
	switch v := v.(type) {
	case stylex.Number:
		if float64(v) == float64(int64(v)) {
			return tagged("!!int", v.Literal())
		}
		return tagged("!!float", v.Literal())
	case stylex.Str:
		return scalar(string(v))
	case stylex.VarRef:
		return tagged(tagRef, v.Path)
	case stylex.Dynamic:
		return tagged(tagDynamic, v.ExpressionRef)
	case stylex.Template:
		return tagged(tagTemplate, v.Literal())
	default:
		return tagged("!!null", "null")
	}
}

func nodeOf(n stylex.Node) *yaml.Node {
	switch n := n.(type) {
	case *stylex.ConditionalMap:
		m := mapping()
		for _, e := range n.Entries() {
			add(m, e.Key.String(), nodeOf(e.Value))
		}
		return m
	case stylex.StyleValue:
		return valueNode(n)
	default:
		return tagged("!!null", "null")
	}
}

func graphNode(g *stylex.Graph) *yaml.Node {
	m := mapping()
	if g == nil {
		m.Style = yaml.FlowStyle
		return m
	}
	for _, p := range g.Properties() {
		add(m, p.Name, nodeOf(p.Value))
	}
	for _, ns := range g.Namespaces() {
		add(m, ns.Key, graphNode(ns.Graph))
	}
	if len(m.Content) == 0 {
		m.Style = yaml.FlowStyle
	}
	return m
}

func importsNode(imports []stylex.Import) *yaml.Node {
	s := sequence()
	for _, imp := range imports {
		m := mapping()
		add(m, "from", scalar(imp.From))
		add(m, "names", flowList(imp.Names))
		s.Content = append(s.Content, m)
	}
	return s
}

func diagnosticsNode(diags []stylex.Diagnostic) *yaml.Node {
	s := sequence()
	for _, d := range diags {
		m := mapping()
		add(m, "severity", scalar(d.Severity.String()))
		add(m, "reason", scalar(string(d.Reason)))
		add(m, "location", scalar(d.Location.String()))
		if d.Context != "" {
			add(m, "context", scalar(d.Context))
		}
		s.Content = append(s.Content, m)
	}
	return s
}

func resultNode(r *stylex.Result) *yaml.Node {
	m := mapping()
	add(m, "component", scalar(r.Component))
	add(m, "style_key", scalar(r.StyleKey))
	if r.Bailed {
		add(m, "bailed", scalar(string(r.Reason)))
		if len(r.Diagnostics) > 0 {
			add(m, "diagnostics", diagnosticsNode(r.Diagnostics))
		}
		return m
	}

	add(m, "styles", graphNode(r.Graph))

	if len(r.Relations) > 0 {
		rels := sequence()
		for _, o := range r.Relations {
			rel := mapping()
			add(rel, "key", scalar(o.OverrideKey))
			add(rel, "direction", scalar(o.Direction.String()))
			add(rel, "parent", scalar(o.ParentKey))
			add(rel, "child", scalar(o.ChildKey))
			if o.MarkerName != "" {
				add(rel, "marker", scalar(o.MarkerName))
			}
			if o.CrossFile {
				add(rel, "cross_file", boolean(true))
			}
			when := mapping()
			for _, b := range o.PseudoBuckets {
				label := b.Pseudo
				if label == "" {
					label = "default"
				}
				add(when, label, graphNode(b.Graph))
			}
			add(rel, "when", when)
			rels.Content = append(rels.Content, rel)
		}
		add(m, "relations", rels)
	}

	if len(r.AttributeBuckets) > 0 {
		attrs := sequence()
		for _, b := range r.AttributeBuckets {
			a := mapping()
			add(a, "key", scalar(b.Key))
			add(a, "kind", scalar(b.Kind.String()))
			if b.Value != "" {
				add(a, "value", scalar(b.Value))
			}
			add(a, "element", scalar(b.Element))
			add(a, "styles", graphNode(b.Graph))
			attrs.Content = append(attrs.Content, a)
		}
		add(m, "attributes", attrs)
	}

	if len(r.PseudoAliases) > 0 {
		aliases := sequence()
		for _, pa := range r.PseudoAliases {
			a := mapping()
			add(a, "slot", tagged("!!int", fmt.Sprint(pa.Slot)))
			add(a, "values", flowList(pa.Values))
			if pa.StyleSelectorExpr != "" {
				add(a, "style_selector", scalar(pa.StyleSelectorExpr))
			}
			aliases.Content = append(aliases.Content, a)
		}
		add(m, "pseudo_aliases", aliases)
	}

	if r.NeedsDefaultMarker {
		add(m, "default_marker", boolean(true))
	}
	if len(r.MarkersRequired) > 0 {
		add(m, "markers_required", flowList(r.MarkersRequired))
	}
	if len(r.Imports) > 0 {
		add(m, "imports", importsNode(r.Imports))
	}
	if len(r.Diagnostics) > 0 {
		add(m, "diagnostics", diagnosticsNode(r.Diagnostics))
	}
	return m
}

// resultsDocument builds ordered yaml document for results of one source
// file.
func resultsDocument(source string, results []*stylex.Result) *yaml.Node {
	root := mapping()
	add(root, "source", scalar(source))
	list := sequence()
	for _, r := range results {
		list.Content = append(list.Content, resultNode(r))
	}
	add(root, "components", list)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

// writeResults renders results in requested format.
func writeResults(w io.Writer, source string, results []*stylex.Result, format config.OutputFmt) error {
	switch format {
	case config.OutputFmtYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resultsDocument(source, results)); err != nil {
			return fmt.Errorf("unable to encode results: %w", err)
		}
		return enc.Close()
	case config.OutputFmtDump:
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "# %s\n", source)
		for _, r := range results {
			buf.WriteString(r.String())
		}
		_, err := buf.WriteTo(w)
		return err
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
}

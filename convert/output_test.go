package convert

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	yaml "gopkg.in/yaml.v3"

	"sc2sx/config"
	"sc2sx/convert/stylex"
)

func convertSample(t *testing.T) []*stylex.Result {
	t.Helper()
	log := zaptest.NewLogger(t)

	doc, err := LoadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatal(err)
	}
	table, decls, _ := doc.Declarations("sample.yaml", log)
	e := stylex.NewEngine(log, table, stylex.WithAdapter(NewTableAdapter(testEngineConfig())))
	results, err := e.ConvertAll(context.Background(), decls)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	return results
}

func mapValue(t *testing.T, n *yaml.Node, key string) *yaml.Node {
	t.Helper()
	if n.Kind != yaml.MappingNode {
		t.Fatalf("looking for %q in non mapping node (kind %d)", key, n.Kind)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	t.Fatalf("key %q missing", key)
	return nil
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func TestResultsDocument(t *testing.T) {
	doc := resultsDocument("sample.yaml", convertSample(t))
	root := doc.Content[0]

	if v := mapValue(t, root, "source").Value; v != "sample.yaml" {
		t.Errorf("source = %q", v)
	}
	comps := mapValue(t, root, "components")
	if len(comps.Content) != 3 {
		t.Fatalf("components = %d", len(comps.Content))
	}

	icon := comps.Content[0]
	if w := mapValue(t, mapValue(t, icon, "styles"), "width"); w.Value != "16px" || w.Tag != "!!str" {
		t.Errorf("icon width = %+v", w)
	}

	button := comps.Content[1]
	if c := mapValue(t, mapValue(t, button, "styles"), "color"); c.Tag != tagRef || c.Value != "colors.brand" {
		t.Errorf("button color = %s %s", c.Tag, c.Value)
	}
	rel := mapValue(t, button, "relations").Content[0]
	if mapValue(t, rel, "key").Value != "iconInButton" || mapValue(t, rel, "marker").Value != "buttonMarker" {
		t.Errorf("relation key/marker wrong")
	}
	if d := mapValue(t, rel, "direction").Value; d != "descendant" {
		t.Errorf("direction = %q", d)
	}
	if fill := mapValue(t, mapValue(t, mapValue(t, rel, "when"), ":hover"), "fill"); fill.Value != "red" {
		t.Errorf("fill = %q", fill.Value)
	}
	if mapValue(t, button, "default_marker").Value != "true" {
		t.Error("button needs default marker")
	}
	if imp := mapValue(t, button, "imports").Content[0]; mapValue(t, imp, "from").Value != "./tokens.stylex" {
		t.Errorf("imports wrong")
	}

	card := comps.Content[2]
	if mapValue(t, card, "bailed").Value != string(stylex.ReasonClassSelector) {
		t.Error("card must bail")
	}
	if hasKey(card, "styles") {
		t.Error("bailed components have no styles")
	}
	if diag := mapValue(t, card, "diagnostics").Content[0]; mapValue(t, diag, "severity").Value != "error" {
		t.Error("bail diagnostic must be an error")
	}
}

func TestValueNode(t *testing.T) {
	tests := []struct {
		name  string
		value stylex.StyleValue
		tag   string
		text  string
	}{
		{"integer", stylex.Number(2), "!!int", "2"},
		{"float", stylex.Number(0.5), "!!float", "0.5"},
		{"string", stylex.Str("2px"), "!!str", "2px"},
		{"ref", stylex.VarRef{Path: "colors.brand"}, tagRef, "colors.brand"},
		{"dynamic", stylex.Dynamic{ExpressionRef: "__SC_EXPR_0__", SlotRefs: []int{0}}, tagDynamic, "__SC_EXPR_0__"},
		{"template", stylex.Template{Segments: []stylex.Segment{
			{Kind: stylex.SegmentText, Text: "calc("},
			{Kind: stylex.SegmentSlot, Slot: 1},
			{Kind: stylex.SegmentText, Text: " * 2)"},
		}}, tagTemplate, "calc(${1} * 2)"},
		{"null", stylex.Null{}, "!!null", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valueNode(tt.value)
			if n.Tag != tt.tag || n.Value != tt.text {
				t.Errorf("valueNode() = %s %q, want %s %q", n.Tag, n.Value, tt.tag, tt.text)
			}
		})
	}
}

func TestWriteResults(t *testing.T) {
	results := convertSample(t)

	t.Run("yaml", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := writeResults(buf, "sample.yaml", results, config.OutputFmtYaml); err != nil {
			t.Fatalf("writeResults() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"source: sample.yaml", "color: !ref colors.brand", "bailed: class-selector"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}
		var back yaml.Node
		if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
			t.Errorf("output is not valid yaml: %v", err)
		}
	})

	t.Run("dump", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := writeResults(buf, "sample.yaml", results, config.OutputFmtDump); err != nil {
			t.Fatalf("writeResults() error = %v", err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "# sample.yaml\n") || !strings.Contains(out, "component Button (key button)") {
			t.Errorf("dump:\n%s", out)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if err := writeResults(new(bytes.Buffer), "sample.yaml", results, config.OutputFmt(42)); err == nil {
			t.Error("expected error")
		}
	})
}

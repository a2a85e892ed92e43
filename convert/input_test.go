package convert

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"sc2sx/convert/stylex"
)

const sampleDocument = `components:
  - name: Icon
    element: svg
    css: |
      width: 16px;
  - name: Button
    element: button
    exported: true
    css: |
      color: var(--brand);
      &:hover ${0} {
        fill: red;
      }
    slots:
      0: {kind: identifier, name: Icon}
    usages:
      - children:
          - {kind: component, name: Icon}
          - {kind: text}
  - name: Card
    element: div
    css: |
      &.active { color: red; }
  - name: Label
    element: span
`

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if len(doc.Components) != 4 {
		t.Fatalf("components = %d, want 4", len(doc.Components))
	}
	btn := doc.Components[1]
	if btn.Name != "Button" || !btn.Exported || btn.Slots[0].Name != "Icon" {
		t.Errorf("button = %+v", btn)
	}
	if len(btn.Usages) != 1 || len(btn.Usages[0].Children) != 2 {
		t.Errorf("usages = %+v", btn.Usages)
	}
}

func TestLoadDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no components", "components: []\n"},
		{"unknown field", "components:\n  - name: A\n    colour: red\n"},
		{"missing name", "components:\n  - element: div\n"},
		{"duplicate names", "components:\n  - name: A\n  - name: A\n"},
		{"unknown descriptor kind", "components:\n  - name: A\n    slots:\n      0: {kind: spread}\n"},
		{"identifier without name", "components:\n  - name: A\n    slots:\n      0: {kind: identifier}\n"},
		{"member without path", "components:\n  - name: A\n    slots:\n      0: {kind: member}\n"},
		{"arrow without body", "components:\n  - name: A\n    slots:\n      0: {kind: arrow, param: p}\n"},
		{"bad logical operator", "components:\n  - name: A\n    slots:\n      0:\n        kind: logical\n        operator: '&&'\n        left: {kind: literal, literal: '1'}\n        right: {kind: literal, literal: '2'}\n"},
		{"bad nested descriptor", "components:\n  - name: A\n    slots:\n      0:\n        kind: arrow\n        body: {kind: member}\n"},
		{"negative slot", "components:\n  - name: A\n    slots:\n      -1: {kind: identifier, name: x}\n"},
		{"unknown child kind", "components:\n  - name: A\n    usages:\n      - children:\n          - {kind: fragment}\n"},
		{"component child without name", "components:\n  - name: A\n    usages:\n      - children:\n          - {kind: component}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadDocument(strings.NewReader(tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDocument_Declarations(t *testing.T) {
	doc, err := LoadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatal(err)
	}

	table, decls, warnings := doc.Declarations("sample.yaml", zaptest.NewLogger(t))
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if _, ok := table.Lookup("Label"); !ok {
		t.Error("components without css must be in the table")
	}
	if len(decls) != 3 {
		t.Fatalf("declarations = %d, want 3", len(decls))
	}

	btn := decls[1]
	if btn.LocalName != "Button" || btn.Key() != "button" || btn.Element != "button" || !btn.Exported {
		t.Errorf("button info = %+v", btn.ComponentInfo)
	}
	if name, ok := btn.Slots.Identifier(0); !ok || name != "Icon" {
		t.Errorf("slot 0 = %+v", btn.Slots[0])
	}
	if len(btn.Rules) != 1 || btn.Rules[0].Selector != "&" || len(btn.Rules[0].Rules) != 1 {
		t.Errorf("rules = %+v", btn.Rules)
	}
	children := btn.Usages[0].Children
	if children[0].Kind != stylex.ChildComponent || children[0].Name != "Icon" || children[1].Kind != stylex.ChildText {
		t.Errorf("children = %+v", children)
	}
}

func TestDocument_DeclarationsNestedDescriptor(t *testing.T) {
	doc, err := LoadDocument(strings.NewReader(`components:
  - name: Box
    css: "color: ${0};"
    slots:
      0:
        kind: arrow
        destructured: [theme]
        body:
          kind: logical
          operator: "??"
          left: {kind: member, path: [theme, colors, primary]}
          right: {kind: literal, literal: "'red'"}
`))
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	_, decls, _ := doc.Declarations("box.yaml", nil)
	d := decls[0].Slots[0]
	if d.Kind != stylex.DescArrow || d.Body == nil || d.Body.Kind != stylex.DescLogical {
		t.Fatalf("descriptor = %+v", d)
	}
	if d.Body.Operator != "??" || d.Body.Left.Kind != stylex.DescMember || len(d.Body.Left.Path) != 3 || d.Body.Right.Literal != "'red'" {
		t.Errorf("logical = %+v", d.Body)
	}
}

func TestDocument_DeclarationsWarnings(t *testing.T) {
	doc, err := LoadDocument(strings.NewReader("components:\n  - name: Broken\n    css: \"&:hover { color: red;\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, decls, warnings := doc.Declarations("broken.yaml", zaptest.NewLogger(t))
	if len(decls) != 1 {
		t.Fatalf("declarations = %d", len(decls))
	}
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "Broken: unterminated block") {
		t.Errorf("warnings = %v", warnings)
	}
}

package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"sc2sx/convert/stylex"
	"sc2sx/css"
)

// Input document describes one source file: styled components declared in
// it with their template css, interpolation descriptors and usage sites.
type (
	Document struct {
		Components []ComponentDoc `yaml:"components" validate:"min=1,dive"`
	}

	ComponentDoc struct {
		Name     string                `yaml:"name" validate:"required"`
		StyleKey string                `yaml:"style_key,omitempty"`
		Element  string                `yaml:"element,omitempty"`
		Exported bool                  `yaml:"exported,omitempty"`
		CSS      string                `yaml:"css,omitempty"`
		Slots    map[int]DescriptorDoc `yaml:"slots,omitempty" validate:"dive"`
		Usages   []UsageDoc            `yaml:"usages,omitempty" validate:"dive"`
	}

	DescriptorDoc struct {
		Kind         string         `yaml:"kind" validate:"oneof=identifier member literal arrow logical call other"`
		Name         string         `yaml:"name,omitempty"`
		Path         []string       `yaml:"path,omitempty"`
		Literal      string         `yaml:"literal,omitempty"`
		Param        string         `yaml:"param,omitempty"`
		Destructured []string       `yaml:"destructured,omitempty"`
		Body         *DescriptorDoc `yaml:"body,omitempty"`
		Left         *DescriptorDoc `yaml:"left,omitempty"`
		Right        *DescriptorDoc `yaml:"right,omitempty"`
		Operator     string         `yaml:"operator,omitempty"`
	}

	UsageDoc struct {
		Children []ChildDoc `yaml:"children" validate:"dive"`
	}

	ChildDoc struct {
		Kind  string `yaml:"kind" validate:"oneof=element component expression children text"`
		Name  string `yaml:"name,omitempty" validate:"required_if=Kind element,required_if=Kind component"`
		Empty bool   `yaml:"empty,omitempty"`
	}
)

var descriptorKinds = map[string]stylex.DescriptorKind{
	"other":      stylex.DescOther,
	"identifier": stylex.DescIdentifier,
	"member":     stylex.DescMember,
	"literal":    stylex.DescLiteral,
	"arrow":      stylex.DescArrow,
	"logical":    stylex.DescLogical,
	"call":       stylex.DescCall,
}

var childKinds = map[string]stylex.ChildKind{
	"element":    stylex.ChildElement,
	"component":  stylex.ChildComponent,
	"expression": stylex.ChildExpression,
	"children":   stylex.ChildPlaceholder,
	"text":       stylex.ChildText,
}

// LoadDocument decodes and validates input document.
func LoadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("input document is empty")
		}
		return nil, fmt.Errorf("failed to decode input document: %w", err)
	}
	if err := gencfg.Validate(doc, gencfg.WithAdditionalChecks(checkDocument)); err != nil {
		return nil, fmt.Errorf("invalid input document: %w", err)
	}
	return doc, nil
}

// checkDocument validates what struct tags cannot express.
func checkDocument(sl validator.StructLevel) {
	doc := sl.Current().Interface().(Document)

	seen := make(map[string]struct{}, len(doc.Components))
	for i, c := range doc.Components {
		field := fmt.Sprintf("Components[%d]", i)
		if _, ok := seen[c.Name]; ok {
			sl.ReportError(c.Name, field+".Name", "Name", "unique", "")
		}
		seen[c.Name] = struct{}{}

		for n, d := range c.Slots {
			if n < 0 {
				sl.ReportError(n, fmt.Sprintf("%s.Slots[%d]", field, n), "Slots", "gte", "0")
			}
			if tag := checkDescriptor(&d); tag != "" {
				sl.ReportError(d.Kind, fmt.Sprintf("%s.Slots[%d]", field, n), "Slots", tag, "")
			}
		}
	}
}

// checkDescriptor returns name of the failed check or empty string.
func checkDescriptor(d *DescriptorDoc) string {
	if d == nil {
		return ""
	}
	if _, ok := descriptorKinds[d.Kind]; !ok {
		return "kind"
	}
	switch d.Kind {
	case "identifier", "call":
		if d.Name == "" {
			return "name"
		}
	case "member":
		if len(d.Path) == 0 {
			return "path"
		}
	case "arrow":
		if d.Body == nil {
			return "body"
		}
	case "logical":
		if d.Operator != "??" && d.Operator != "||" {
			return "operator"
		}
		if d.Left == nil || d.Right == nil {
			return "operands"
		}
	}
	for _, sub := range []*DescriptorDoc{d.Body, d.Left, d.Right} {
		if tag := checkDescriptor(sub); tag != "" {
			return tag
		}
	}
	return ""
}

func (d *DescriptorDoc) descriptor() *stylex.Descriptor {
	if d == nil {
		return nil
	}
	return &stylex.Descriptor{
		Kind:         descriptorKinds[d.Kind],
		Name:         d.Name,
		Path:         d.Path,
		Literal:      d.Literal,
		Param:        d.Param,
		Destructured: d.Destructured,
		Body:         d.Body.descriptor(),
		Left:         d.Left.descriptor(),
		Right:        d.Right.descriptor(),
		Operator:     d.Operator,
	}
}

func (c *ComponentDoc) info() stylex.ComponentInfo {
	return stylex.ComponentInfo{
		LocalName: c.Name,
		StyleKey:  c.StyleKey,
		Element:   c.Element,
		Exported:  c.Exported,
	}
}

// Declarations builds component table of the document and engine
// declarations for every component which has css. Parser warnings are
// logged and returned.
func (doc *Document) Declarations(source string, log *zap.Logger) (*stylex.ComponentTable, []stylex.Declaration, []string) {
	if log == nil {
		log = zap.NewNop()
	}

	infos := make([]stylex.ComponentInfo, 0, len(doc.Components))
	for i := range doc.Components {
		infos = append(infos, doc.Components[i].info())
	}
	table := stylex.NewComponentTable(infos...)

	var (
		parser   = css.NewParser(log)
		decls    = make([]stylex.Declaration, 0, len(doc.Components))
		warnings []string
	)
	for i := range doc.Components {
		c := &doc.Components[i]
		if c.CSS == "" {
			continue
		}

		block := parser.Parse([]byte(c.CSS), source+":"+c.Name)
		for _, w := range block.Warnings {
			log.Warn("Problem in component css", zap.String("component", c.Name), zap.String("warning", w))
			warnings = append(warnings, c.Name+": "+w)
		}

		decl := stylex.Declaration{
			ComponentInfo: c.info(),
			Rules:         []css.Rule{block.Root},
		}
		if len(c.Slots) > 0 {
			decl.Slots = make(stylex.Slots, len(c.Slots))
			for n, d := range c.Slots {
				decl.Slots[n] = *d.descriptor()
			}
		}
		for _, u := range c.Usages {
			usage := stylex.Usage{Children: make([]stylex.Child, 0, len(u.Children))}
			for _, ch := range u.Children {
				usage.Children = append(usage.Children, stylex.Child{Kind: childKinds[ch.Kind], Name: ch.Name, Empty: ch.Empty})
			}
			decl.Usages = append(decl.Usages, usage)
		}
		decls = append(decls, decl)
	}
	return table, decls, warnings
}

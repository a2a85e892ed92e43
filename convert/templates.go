package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"sc2sx/config"
	"sc2sx/convert/stylex"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	Source      string   // source path relative to the processed directory
	SourceFile  string   // source file name without extension
	Format      string
	Components  []string // declared components in source order
	Converted   int
	Bailed      int
	Reasons     map[string]int // bail reasons of unconverted components
	Diagnostics int
	Warnings    []string // problems found while parsing component css
	Output      string
}

func buildValues(name config.TemplateFieldName, src string, components []string, results []*stylex.Result, format config.OutputFmt) Values {
	v := Values{
		Context:    string(name),
		Source:     filepath.ToSlash(src),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Format:     format.String(),
		Components: components,
		Reasons:    make(map[string]int),
	}
	for _, r := range results {
		v.Diagnostics += len(r.Diagnostics)
		if r.Bailed {
			v.Bailed++
			v.Reasons[string(r.Reason)]++
			continue
		}
		v.Converted++
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ImportConfig struct {
		From  string   `yaml:"from" validate:"required"`
		Names []string `yaml:"names" validate:"min=1,dive,required"`
	}

	VariableConfig struct {
		Code    string         `yaml:"code" validate:"required"`
		Imports []ImportConfig `yaml:"imports,omitempty" validate:"dive"`
	}

	SelectorConfig struct {
		Kind          SelectorKind   `yaml:"kind" validate:"oneof=0 1"`
		Expr          string         `yaml:"expr,omitempty" validate:"required_if=Kind 0"`
		Values        []string       `yaml:"values,omitempty" validate:"required_if=Kind 1,dive,startswith=:"`
		StyleSelector string         `yaml:"style_selector,omitempty"`
		Imports       []ImportConfig `yaml:"imports,omitempty" validate:"dive"`
	}

	ComponentConfig struct {
		Name     string `yaml:"name" validate:"required"`
		StyleKey string `yaml:"style_key,omitempty"`
		Element  string `yaml:"element,omitempty"`
	}

	// EngineConfig holds static resolution tables for the whole project.
	EngineConfig struct {
		SiblingMarker string                    `yaml:"sibling_marker" validate:"required"`
		Workers       int                       `yaml:"workers" validate:"min=1,max=256"`
		Variables     map[string]VariableConfig `yaml:"variables,omitempty" validate:"dive"`
		Theme         map[string]string         `yaml:"theme,omitempty"`
		Selectors     map[string]SelectorConfig `yaml:"selectors,omitempty" validate:"dive"`
		Components    []ComponentConfig         `yaml:"components,omitempty" validate:"dive"`
	}

	OutputConfig struct {
		Format                OutputFmt `yaml:"format" validate:"oneof=0 1"`
		NameTemplate          string    `yaml:"name_template"`
		FileNameTransliterate bool      `yaml:"file_name_transliterate"`
		SummaryTemplate       string    `yaml:"summary_template"`
		Database              string    `yaml:"database,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Engine    EngineConfig   `yaml:"engine"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, these are expanded at run time
	// with values of a processed file
	NameTemplateFieldName    TemplateFieldName = "name_template"
	SummaryTemplateFieldName TemplateFieldName = "summary_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(NameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(SummaryTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

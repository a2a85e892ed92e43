package config

import (
	"fmt"
	"strings"
)

// Requested output type.
// ENUM(yaml, dump)
type OutputFmt int

const (
	OutputFmtYaml OutputFmt = iota
	OutputFmtDump
)

var outputFmtNames = []string{"yaml", "dump"}

// OutputFmtNames returns list of possible string values of OutputFmt.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames...)
}

func (o OutputFmt) String() string {
	if o >= 0 && int(o) < len(outputFmtNames) {
		return outputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", int(o))
}

// ParseOutputFmt converts string into OutputFmt.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range outputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is not a valid OutputFmt, try [%s]", name, strings.Join(outputFmtNames, ", "))
}

func (o OutputFmt) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtYaml:
		return ".stylex.yaml"
	case OutputFmtDump:
		return ".stylex.txt"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Kind of a configured selector interpolation.
// ENUM(media, pseudoAlias)
type SelectorKind int

const (
	SelectorKindMedia SelectorKind = iota
	SelectorKindPseudoAlias
)

var selectorKindNames = []string{"media", "pseudoAlias"}

func (k SelectorKind) String() string {
	if k >= 0 && int(k) < len(selectorKindNames) {
		return selectorKindNames[k]
	}
	return fmt.Sprintf("SelectorKind(%d)", int(k))
}

// ParseSelectorKind converts string into SelectorKind.
func ParseSelectorKind(name string) (SelectorKind, error) {
	for i, n := range selectorKindNames {
		if strings.EqualFold(n, name) {
			return SelectorKind(i), nil
		}
	}
	return SelectorKind(0), fmt.Errorf("%s is not a valid SelectorKind, try [%s]", name, strings.Join(selectorKindNames, ", "))
}

func (k SelectorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SelectorKind) UnmarshalText(text []byte) error {
	v, err := ParseSelectorKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

package complete

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed annotations.yaml
var annotationsYAML []byte

// Annotations loaded from YAML
var annotations struct {
	Statements map[string]annotationEntry `yaml:"statements"`
	Keywords   map[string]annotationEntry `yaml:"keywords"`
	Options    map[string][]optionEntry   `yaml:"options"`
}

type annotationEntry struct {
	Detail        string `yaml:"detail"`
	Documentation string `yaml:"documentation"`
}

// optionEntry describes one "name = value" option of a WITH clause.
type optionEntry struct {
	Name   string        `yaml:"name"`
	Detail string        `yaml:"detail"`
	Values []valueEntry  `yaml:"values"`
	Keys   []mapKeyEntry `yaml:"keys"`
}

type valueEntry struct {
	Label  string `yaml:"label"`
	Detail string `yaml:"detail"`
}

// mapKeyEntry is a key valid inside a map literal option value.
type mapKeyEntry struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

func init() {
	if err := yaml.Unmarshal(annotationsYAML, &annotations); err != nil {
		panic("failed to parse annotations.yaml: " + err.Error())
	}
}

func keywordDetail(text string) string {
	return annotations.Keywords[text].Detail
}

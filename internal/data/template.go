package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template describes one pooled node type loaded from YAML.
type Template struct {
	Name      string `yaml:"name"`
	Prewarm   int    `yaml:"prewarm"`    // entities built and parked at boot
	MaxActive int    `yaml:"max_active"` // spawn budget ceiling
	Lifetime  int    `yaml:"lifetime"`   // ticks before recycle; 0 = until host destroys it
	Follows   string `yaml:"follows"`    // leader template name, empty = none
	Spread    int32  `yaml:"spread"`     // random spawn offset around the origin
}

type templateListFile struct {
	Templates []Template `yaml:"templates"`
}

// TemplateTable holds all templates indexed by name, in file order.
type TemplateTable struct {
	byName map[string]*Template
	order  []*Template
}

// LoadTemplateTable loads node templates from a YAML file.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplateTable(data)
}

// ParseTemplateTable parses and validates a YAML template document.
func ParseTemplateTable(data []byte) (*TemplateTable, error) {
	var f templateListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &TemplateTable{
		byName: make(map[string]*Template, len(f.Templates)),
		order:  make([]*Template, 0, len(f.Templates)),
	}
	for i := range f.Templates {
		tpl := &f.Templates[i]
		if tpl.Name == "" {
			return nil, fmt.Errorf("template #%d: missing name", i)
		}
		if _, dup := t.byName[tpl.Name]; dup {
			return nil, fmt.Errorf("template %q: duplicate name", tpl.Name)
		}
		if tpl.Prewarm < 0 || tpl.MaxActive < 0 || tpl.Lifetime < 0 || tpl.Spread < 0 {
			return nil, fmt.Errorf("template %q: negative value", tpl.Name)
		}
		t.byName[tpl.Name] = tpl
		t.order = append(t.order, tpl)
	}
	for _, tpl := range t.order {
		if tpl.Follows == "" {
			continue
		}
		if _, ok := t.byName[tpl.Follows]; !ok {
			return nil, fmt.Errorf("template %q: follows unknown template %q", tpl.Name, tpl.Follows)
		}
		if tpl.Follows == tpl.Name {
			return nil, fmt.Errorf("template %q: follows itself", tpl.Name)
		}
	}
	return t, nil
}

// Get returns a template by name, or nil if not found.
func (t *TemplateTable) Get(name string) *Template {
	return t.byName[name]
}

// All returns templates in file order.
func (t *TemplateTable) All() []*Template {
	return t.order
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int {
	return len(t.order)
}

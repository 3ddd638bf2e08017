package wheel

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlPresetFile is the top-level YAML structure for preset files.
type yamlPresetFile struct {
	Presets []yamlPreset `yaml:"presets"`
}

type yamlPreset struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
}

// Preset is a named, ready-made list of option labels.
type Preset struct {
	Name   string
	Labels []string
}

// Options builds wheel options for the preset with fresh ids.
func (p Preset) Options() []Option {
	return FromLabels(p.Labels, NewID)
}

// LoadPresetsFromFile reads a preset YAML file.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns presets keyed by lowercase name, or a non-nil error.
func LoadPresetsFromFile(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file %s: %w", path, err)
	}
	return LoadPresetsFromBytes(data)
}

// LoadPresetsFromBytes parses and validates presets from YAML bytes.
//
// Postcondition: every preset has a unique non-empty name and at least two
// non-empty labels.
func LoadPresetsFromBytes(data []byte) (map[string]Preset, error) {
	var file yamlPresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing preset YAML: %w", err)
	}

	out := make(map[string]Preset, len(file.Presets))
	for i, yp := range file.Presets {
		name := strings.ToLower(strings.TrimSpace(yp.Name))
		if name == "" {
			return nil, fmt.Errorf("preset %d: name must not be empty", i)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("preset %q: duplicate name", name)
		}
		labels := make([]string, 0, len(yp.Options))
		for _, l := range yp.Options {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
		if len(labels) < 2 {
			return nil, fmt.Errorf("preset %q: at least 2 options required, got %d", name, len(labels))
		}
		out[name] = Preset{Name: name, Labels: labels}
	}
	return out, nil
}

package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Config describes definition bundles in JSON or YAML. Component types are
// referenced by the names they were registered under via RegisterType.
type Config struct {
	Definitions []ConfigDefinition `json:"definitions" yaml:"definitions"`
}

// ConfigDefinition is one named bundle, optionally inheriting from a parent.
type ConfigDefinition struct {
	Name       string   `json:"name" yaml:"name"`
	Parent     string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Components []string `json:"components" yaml:"components"`
}

// LoadJSON loads a definition config from a JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML loads a definition config from a YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Apply stores every bundle of the config in the catalog. Component names
// that were never registered are reported in the joined error; a definition
// whose component list resolves to nothing is skipped, consistent with
// Define. Valid definitions are applied even when others fail.
func (c *Config) Apply(catalog *Catalog) error {
	var errs []error
	for _, def := range c.Definitions {
		var types []reflect.Type
		for _, typeName := range def.Components {
			t, ok := TypeByName(typeName)
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %q in definition %q",
					ErrUnknownComponentType, typeName, def.Name))
				continue
			}
			types = append(types, t)
		}
		if def.Parent != "" {
			catalog.Extend(def.Name, def.Parent, types...)
		} else {
			catalog.Define(def.Name, types...)
		}
	}
	return errors.Join(errs...)
}

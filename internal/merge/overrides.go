package merge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/franz/narrative-db/internal/util"
)

//go:embed overrides.yaml
var defaultOverridesYAML []byte

// Override is a hand-picked album for one artist
type Override struct {
	Artist string `yaml:"artist"`
	Album  string `yaml:"album"`
}

// Overrides is an ordered artist to album table. Order decides which
// override is considered first when two name the same artist.
type Overrides []Override

// DefaultOverrides returns the built-in override table
func DefaultOverrides() Overrides {
	o, err := ParseOverrides(defaultOverridesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded overrides.yaml is invalid: %v", err))
	}
	return o
}

// ParseOverrides decodes a YAML sequence of {artist, album} entries
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	for i := range o {
		o[i].Artist = strings.TrimSpace(o[i].Artist)
		o[i].Album = strings.TrimSpace(o[i].Album)
		if o[i].Artist == "" || o[i].Album == "" {
			return nil, fmt.Errorf("override %d: artist and album are required", i+1)
		}
	}
	return o, nil
}

// LoadOverrides reads the override table from path, or returns the
// built-in table when path is empty
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return DefaultOverrides(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrSourceMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides %s: %w", path, err)
	}

	o, err := ParseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

package contact

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy optionally pins fields to always keep the winner's value,
// layered on top of the built-in identity/audit exclusions. It can
// tighten the merge, never loosen it.
type Policy struct {
	// PinnedFields keep the winner's value even when an override or
	// gap-fill would otherwise take the loser's.
	PinnedFields []string `yaml:"pinned_fields"`
}

// Pinned reports whether a field is pinned to the winner.
func (p Policy) Pinned(field string) bool {
	for _, f := range p.PinnedFields {
		if f == field {
			return true
		}
	}
	return false
}

// LoadPolicy reads a merge policy from a YAML file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, eris.Wrapf(err, "contact: read policy %s", path)
	}

	var wrapper struct {
		Merge Policy `yaml:"merge"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Policy{}, eris.Wrap(err, "contact: parse policy yaml")
	}

	return wrapper.Merge, nil
}

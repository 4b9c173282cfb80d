package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/j-veylop/dhikr-tally/internal/models"
)

// LoadCatalogue returns the built-in phrase catalogue, with the kinds listed
// in the JSON file at path replacing the defaults. An empty path returns the
// defaults. The file maps kind names to phrase lists:
//
//	{"istighfar": [{"label": "...", "arabic": "...", "meaning": "..."}]}
func LoadCatalogue(path string) (models.Catalogue, error) {
	defaults := models.DefaultCatalogue()
	if path == "" {
		return defaults, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phrases file: %w", err)
	}

	override, err := parseCatalogue(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phrases file %s: %w", path, err)
	}

	return defaults.Merge(override), nil
}

func parseCatalogue(content []byte) (models.Catalogue, error) {
	var raw map[string][]models.Phrase
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	out := make(models.Catalogue, len(raw))
	for name, phrases := range raw {
		kind, err := models.ParseKind(name)
		if err != nil {
			return nil, err
		}
		for i, p := range phrases {
			if p.Label == "" && p.Arabic == "" {
				return nil, fmt.Errorf("%s phrase %d has neither label nor arabic text", kind, i)
			}
			if p.Label == "" {
				phrases[i].Label = p.Arabic
			}
		}
		out[kind] = phrases
	}
	return out, nil
}

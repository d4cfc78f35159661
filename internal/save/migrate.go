package save

import (
	"encoding/json"
	"fmt"
)

// document is a save decoded without a schema so migrations can rewrite
// fields that no longer exist in File.
type document map[string]any

type migration struct {
	from int
	name string
	fn   func(document) error
}

// Each migration upgrades a document from version `from` to from+1.
var migrations = []migration{
	{
		from: 1,
		name: "default_auto_refine",
		fn: func(doc document) error {
			doc["auto_refine"] = true
			return nil
		},
	},
	{
		from: 2,
		name: "nest_survey_range",
		fn: func(doc document) error {
			tiles, _ := doc["tiles"].([]any)
			for _, raw := range tiles {
				tile, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				low, hasLow := tile["survey_low"]
				high, hasHigh := tile["survey_high"]
				delete(tile, "survey_low")
				delete(tile, "survey_high")
				if hasLow && hasHigh && low != nil && high != nil {
					tile["survey"] = map[string]any{"low": low, "high": high}
				}
			}
			return nil
		},
	},
}

// versionOf reads save_version, treating a missing field as version 1.
func versionOf(doc document) (int, error) {
	raw, ok := doc["save_version"]
	if !ok || raw == nil {
		return 1, nil
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid save_version %v", raw)
	}
	return int(f), nil
}

// migrate upgrades doc in place to CurrentVersion.
func migrate(doc document) error {
	version, err := versionOf(doc)
	if err != nil {
		return err
	}
	if version > CurrentVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	for _, m := range migrations {
		if m.from < version {
			continue
		}
		if err := m.fn(doc); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.from, m.name, err)
		}
		version = m.from + 1
		doc["save_version"] = version
	}
	if version != CurrentVersion {
		return fmt.Errorf("no migration path to version %d", CurrentVersion)
	}
	return nil
}

// decodeFile parses and migrates raw save bytes.
func decodeFile(data []byte) (*File, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrCorrupt)
	}
	if err := migrate(doc); err != nil {
		return nil, err
	}
	upgraded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(upgraded, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &f, nil
}

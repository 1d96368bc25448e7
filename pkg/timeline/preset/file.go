package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a preset file.
//
//	presets:
//	  - label: Archive
//	    rules:
//	      - name: monthly
//	        recurrence_rule: FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0
//	        retention: 31622400
type File struct {
	// Replace drops the built-in templates instead of merging into them.
	Replace bool       `yaml:"replace"`
	Presets []Template `yaml:"presets"`
}

// Parse decodes and validates a preset file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}
	for _, t := range f.Presets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// LoadFile reads path and builds a library from it. Unless the file sets
// replace, its templates are merged over the built-ins by label.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Replace {
		return NewLibrary(f.Presets...)
	}
	return DefaultLibrary().Merge(f.Presets...)
}

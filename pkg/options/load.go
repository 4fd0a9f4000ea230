package options

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk shape of an option seed document:
//
//	options:
//	  associateType: [Type A, Type B]
//	  states:India: [Maharashtra, Delhi]
type SeedFile struct {
	Options map[string][]string `json:"options" yaml:"options"`
}

// LoadSeedFile reads a JSON or YAML seed document from disk.
func LoadSeedFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("options: read %s: %w", path, err)
	}
	return ParseSeed(data, path)
}

// LoadSeedFS reads a seed document from fsys.
func LoadSeedFS(fsys fs.FS, path string) (map[string][]string, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("options: read %s: %w", path, err)
	}
	return ParseSeed(data, path)
}

// ParseSeed decodes JSON first and falls back to YAML.
func ParseSeed(data []byte, source string) (map[string][]string, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("options: seed %s is empty", source)
	}

	var doc SeedFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = SeedFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("options: parse %s: invalid JSON or YAML", source)
		}
	}

	out := make(map[string][]string, len(doc.Options))
	for field, values := range doc.Options {
		key := strings.TrimSpace(field)
		if key == "" {
			return nil, fmt.Errorf("options: seed %s defines an empty field key", source)
		}
		out[key] = dedupe(values)
	}
	return out, nil
}

// MergeSeeds overlays override onto base. A field present in override
// replaces the base list entirely.
func MergeSeeds(base, override map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(override))
	for field, values := range base {
		out[field] = append([]string(nil), values...)
	}
	for field, values := range override {
		out[field] = append([]string(nil), values...)
	}
	return out
}

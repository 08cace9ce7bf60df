package labels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a label map:
//
//	version: "2025.2"
//	fallback: sentinel
//	sentinel: Other
//	mappings:
//	  CUSTOMER SERVICE: Customer Service
//	  "IT ": Tech & IT
type File struct {
	Version  string            `yaml:"version"`
	Fallback string            `yaml:"fallback"`
	Sentinel string            `yaml:"sentinel"`
	Mappings map[string]string `yaml:"mappings"`
}

// Parse decodes a YAML label map
func Parse(data []byte) (*Map, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse label map: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("label map: version is required")
	}
	if len(f.Mappings) == 0 {
		return nil, fmt.Errorf("label map %s: no mappings", f.Version)
	}
	policy, err := ParseFallbackPolicy(f.Fallback)
	if err != nil {
		return nil, fmt.Errorf("label map %s: %w", f.Version, err)
	}

	m := New(f.Version, f.Mappings, policy)
	if f.Sentinel != "" {
		m = m.WithSentinel(f.Sentinel)
	}
	return m, nil
}

// LoadFile reads a YAML label map from path
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label map: %w", err)
	}
	return Parse(data)
}

// Marshal encodes m in the File format
func Marshal(m *Map) ([]byte, error) {
	f := File{
		Version:  m.version,
		Fallback: m.fallback.String(),
		Mappings: m.entries,
	}
	if m.fallback == Sentinel {
		f.Sentinel = m.sentinel
	}
	return yaml.Marshal(f)
}

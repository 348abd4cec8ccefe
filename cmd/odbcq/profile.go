package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile is one named set of connection settings.
type Profile struct {
	Backend   string            `yaml:"backend"`
	DSN       string            `yaml:"dsn"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	ProbeSize int               `yaml:"probe_size"`
	Sources   map[string]string `yaml:"sources"` // sqlite backend: name -> database file
}

// ProfileFile is the YAML document holding named profiles.
type ProfileFile struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfiles reads a profile file.
func LoadProfiles(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	return &f, nil
}

// Get returns the named profile, or the file's default when name is empty.
func (f *ProfileFile) Get(name string) (Profile, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" && len(f.Profiles) == 1 {
		for only := range f.Profiles {
			name = only
		}
	}

	p, ok := f.Profiles[name]
	if !ok {
		names := make([]string, 0, len(f.Profiles))
		for n := range f.Profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return Profile{}, fmt.Errorf("profile %q not found (have %v)", name, names)
	}

	return p, nil
}

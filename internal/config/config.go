// Package config loads the optional layout overrides an overlay mount can
// be started with, trimmed from the teacher's nine-section Configuration
// (internal/config/config.go) down to the single section this domain needs.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Layout holds the on-disk naming and permission choices for the version
// history tree (spec.md §3–§4.3). Every field has a default matching the
// original fixed layout, so an overlay mount never requires a config file —
// one is only needed to deviate from it.
type Layout struct {
	// DirMode is the permission mode used when creating the history root
	// and per-file history directories.
	DirMode os.FileMode `yaml:"dir_mode"`

	// CounterDigits bounds the decimal ASCII width of next_vers.txt; a
	// counter that would grow past this many digits fails the write
	// instead (spec.md §9, resolved in SPEC_FULL.md §D).
	CounterDigits int `yaml:"counter_digits"`

	// LogLevel selects the default logger's verbosity (spec.md §6):
	// DEBUG, INFO, WARN, or ERROR.
	LogLevel string `yaml:"log_level"`
}

// Default returns the layout every binary uses unless a config file is
// supplied.
func Default() Layout {
	return Layout{
		DirMode:       0755,
		CounterDigits: 2,
		LogLevel:      "INFO",
	}
}

// Load reads a YAML layout override from filename, starting from Default()
// so a file only needs to specify the fields it changes.
func Load(filename string) (Layout, error) {
	layout := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return Layout{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate rejects a layout that would make the history scheme internally
// inconsistent.
func (l Layout) Validate() error {
	if l.CounterDigits <= 0 {
		return fmt.Errorf("counter_digits must be greater than 0")
	}
	switch strings.ToUpper(l.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log_level: %s", l.LogLevel)
	}
	return nil
}

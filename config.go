package evercas

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"
)

// Store-internal names. Dot-prefixed so traversal and repair skip them.
const (
	markerName     = ".evercas.yaml"
	scratchDirName = ".tmp"
)

// marker is the configuration record persisted at the store root. Its
// presence is what makes a store initialized.
type marker struct {
	Algorithm       string `yaml:"algorithm"`
	Depth           int    `yaml:"depth"`
	Width           int    `yaml:"width"`
	DefaultStrategy string `yaml:"default_strategy,omitempty"`
}

// loadMarker reads the marker at root. A missing marker is not an error;
// it returns (nil, nil) so callers can treat the store as uninitialized.
func loadMarker(root string) (*marker, error) {
	data, err := os.ReadFile(filepath.Join(root, markerName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store marker: %w", err)
	}
	var m marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse store marker: %w", err)
	}
	return &m, nil
}

// writeMarker persists the marker atomically so a crash mid-write never
// leaves a half-initialized store.
func writeMarker(root string, m marker) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode store marker: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(root, markerName), data, 0o644); err != nil {
		return fmt.Errorf("write store marker: %w", err)
	}
	return nil
}

package valueset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofhir/fhir/r4"
)

// LoadStats contains statistics about value-set loading.
type LoadStats struct {
	ValueSetsLoaded int
	FilesSkipped    int
}

// LoadFile loads one FHIR R4 ValueSet JSON file into the registry.
// Files whose resourceType is not ValueSet are skipped, not errors, so a
// directory of mixed FHIR resources can be pointed at LoadDir directly.
func (r *Registry) LoadFile(path string) (loaded bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("valueset: read %s: %w", path, err)
	}

	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false, fmt.Errorf("valueset: parse %s: %w", path, err)
	}
	if probe.ResourceType != "ValueSet" {
		return false, nil
	}

	var vs r4.ValueSet
	if err := json.Unmarshal(data, &vs); err != nil {
		return false, fmt.Errorf("valueset: parse ValueSet %s: %w", path, err)
	}

	if err := r.LoadR4ValueSet(&vs, ""); err != nil {
		return false, fmt.Errorf("valueset: load %s: %w", path, err)
	}
	return true, nil
}

// LoadDir loads every *.json ValueSet in a directory (non-recursive).
func (r *Registry) LoadDir(dir string) (*LoadStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("valueset: read dir %s: %w", dir, err)
	}

	stats := &LoadStats{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		loaded, err := r.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return stats, err
		}
		if loaded {
			stats.ValueSetsLoaded++
		} else {
			stats.FilesSkipped++
		}
	}
	return stats, nil
}

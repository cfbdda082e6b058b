package grouping

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carbocation/pfx"
)

// Condition is one named experimental-condition group over repetition
// indices.
type Condition struct {
	Name        string `json:"name"`
	Repetitions []int  `json:"repetitions"`
}

// DatasetConfig declares the two layers that cannot be derived from the
// recording: how sequential-recording groups pair up into repetitions, and
// how repetitions fall into named experimental conditions. Each dataset
// ships its own copy of this file; no derivation rule generalizes across
// datasets.
type DatasetConfig struct {
	ConfigPath string `json:"-"`

	// Repetitions lists groups of 1-based sequential-recording indices.
	Repetitions [][]int `json:"repetitions"`

	// Conditions lists named groups of 1-based repetition indices.
	Conditions []Condition `json:"conditions"`
}

// ParseDatasetConfigFromPath reads the per-dataset grouping declaration.
// Structural validation against actual layer sizes happens later, in
// FromPartition, once the sequential layer is known.
func ParseDatasetConfigFromPath(path string) (DatasetConfig, error) {
	out := DatasetConfig{ConfigPath: path}

	f, err := os.Open(path)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return out, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	if len(out.Repetitions) == 0 {
		return out, fmt.Errorf("grouping: %s declares no repetition groups", path)
	}
	if len(out.Conditions) == 0 {
		return out, fmt.Errorf("grouping: %s declares no experimental conditions", path)
	}

	return out, nil
}

// ConditionGroups splits the conditions into the parallel group/tag slices
// the layer builders consume.
func (c DatasetConfig) ConditionGroups() (groups [][]int, tags []string) {
	for _, cond := range c.Conditions {
		groups = append(groups, cond.Repetitions)
		tags = append(tags, cond.Name)
	}

	return groups, tags
}

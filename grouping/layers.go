// Package grouping builds the four nested index layers over the classified
// sweeps: simultaneous recordings, sequential recordings, repetitions, and
// experimental conditions. Each layer references the one below purely by
// 1-based index lists; no layer re-derives or copies underlying data, which
// lets the storage sink materialize each layer as an independent index table.
package grouping

import (
	"fmt"

	"github.com/ephysio/patchnwb/recording"
	"github.com/ephysio/patchnwb/runclass"
)

// NoSimultaneousTag marks singleton simultaneous-recording groups in sessions
// recorded with a single electrode.
const NoSimultaneousTag = "noSimultaneousRecs"

// Layer is one ordered list of groups. Group members are 1-based indices into
// the layer below (sweeps for the simultaneous layer). Tags, when present,
// run parallel to Groups.
type Layer struct {
	Groups [][]int
	Tags   []string
}

// stimulusTags maps a sweep state code to the sequential-recording tag.
var stimulusTags = map[int]string{
	recording.StateLightBaseline:   "light",
	recording.StateCurrentBaseline: "current",
	recording.StateInduction:       "combined",
	recording.StateBreak:           "noStim",
}

// Simultaneous groups sweeps recorded at the same instant across electrodes.
// Sweeps sharing a start time form one group; with a single electrode every
// group degenerates to a singleton. Tags are constant.
func Simultaneous(startTimes []float64) Layer {
	out := Layer{}

	// Start times arrive in recording order, so equal timestamps across
	// electrodes are adjacent.
	for i := 0; i < len(startTimes); {
		j := i + 1
		for j < len(startTimes) && startTimes[j] == startTimes[i] {
			j++
		}

		group := make([]int, 0, j-i)
		for k := i; k < j; k++ {
			group = append(group, k+1)
		}

		out.Groups = append(out.Groups, group)
		out.Tags = append(out.Tags, NoSimultaneousTag)
		i = j
	}

	return out
}

// Sequential sub-partitions each run's sweeps by their raw state code, in
// order of first appearance within the run. Every group is tagged with the
// stimulus type its state code denotes; an unmapped state code fails the
// layer rather than leaving a group untagged.
func Sequential(runs []runclass.Run, states []int) (Layer, error) {
	out := Layer{}

	for _, run := range runs {
		groupForState := map[int]int{}

		for sweep := run.FirstSweep; sweep <= run.LastSweep; sweep++ {
			if sweep < 1 || sweep > len(states) {
				return Layer{}, fmt.Errorf("grouping: run %s spans sweep %d, but only %d sweeps exist", run.Category, sweep, len(states))
			}

			state := states[sweep-1]

			g, exists := groupForState[state]
			if !exists {
				tag, known := stimulusTags[state]
				if !known {
					return Layer{}, fmt.Errorf("grouping: sweep %d has unrecognized state code %d", sweep, state)
				}

				out.Groups = append(out.Groups, nil)
				out.Tags = append(out.Tags, tag)
				g = len(out.Groups) - 1
				groupForState[state] = g
			}

			out.Groups[g] = append(out.Groups[g], sweep)
		}
	}

	return out, nil
}

// FromPartition wraps an externally supplied partition (the repetition and
// condition layers are per-dataset configuration, not derived) after
// validating it against the size of the layer below.
func FromPartition(name string, groups [][]int, tags []string, belowSize int) (Layer, error) {
	out := Layer{Groups: groups, Tags: tags}

	if tags != nil && len(tags) != len(groups) {
		return Layer{}, fmt.Errorf("grouping: %s layer has %d groups but %d tags", name, len(groups), len(tags))
	}

	if err := out.CheckPartition(belowSize); err != nil {
		return Layer{}, fmt.Errorf("%s layer: %w", name, err)
	}

	return out, nil
}

// CheckPartition verifies that the layer's groups cover every index of the
// layer below exactly once. Configuration errors surface here, before any
// serialization begins.
func (l Layer) CheckPartition(belowSize int) error {
	seen := make([]bool, belowSize)

	for g, group := range l.Groups {
		if len(group) == 0 {
			return fmt.Errorf("grouping: group %d is empty", g+1)
		}

		for _, idx := range group {
			if idx < 1 || idx > belowSize {
				return fmt.Errorf("grouping: group %d references index %d, outside the valid range 1..%d", g+1, idx, belowSize)
			}
			if seen[idx-1] {
				return fmt.Errorf("grouping: index %d appears in more than one group", idx)
			}
			seen[idx-1] = true
		}
	}

	for i, covered := range seen {
		if !covered {
			return fmt.Errorf("grouping: index %d is not covered by any group", i+1)
		}
	}

	return nil
}

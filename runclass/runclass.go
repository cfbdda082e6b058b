// Package runclass partitions an ordered sweep sequence into contiguous runs.
// A run is a maximal range of sweeps sharing one experimental category
// (baseline, break, or plasticity induction), inferred from the leading
// character of each sweep's label. Run boundaries occur exactly where that
// character changes between consecutive sweeps.
package runclass

import (
	"fmt"
	"strings"
)

// Category names one experimental phase of the recording protocol.
type Category string

const (
	Baseline   Category = "baseline"
	Break      Category = "break"
	Plasticity Category = "plasticity"
)

// Units used by the acquisition amplifier for a given category. Baseline and
// break sweeps are current measurements under voltage clamp; plasticity
// induction sweeps are voltage measurements under current clamp.
const (
	UnitAmperes = "amperes"
	UnitVolts   = "volts"
)

// Run is one maximal contiguous range of sweeps sharing a category. Sweep
// indices are 1-based and inclusive on both ends.
type Run struct {
	Category   Category
	Unit       string
	FirstSweep int
	LastSweep  int

	// StartTime is the recording-relative start time, in seconds, of the
	// run's first sweep.
	StartTime float64

	// PointCount is the sample count of the run's first sweep, kept as a
	// representative value only; sweeps within a run may differ in length.
	PointCount int
}

// categoryForTransition maps the leading label character of a run's first
// sweep to its category and unit. The protocol encodes run transitions this
// way: 'b' or '9' opens a break, '0' opens a plasticity induction block, '1'
// opens a baseline block. Older acquisition scripts wrote 'b' for breaks;
// newer ones write the break state code '9' directly.
func categoryForTransition(c byte) (Category, string, error) {
	switch c {
	case 'b', '9':
		return Break, UnitAmperes, nil
	case '0':
		return Plasticity, UnitVolts, nil
	case '1':
		return Baseline, UnitAmperes, nil
	}

	return "", "", fmt.Errorf("runclass: unrecognized sweep label transition character %q (want 'b', '9', '0', or '1')", string(c))
}

// leadChar lower-cases and returns the first byte of a sweep label.
func leadChar(label string) (byte, error) {
	if label == "" {
		return 0, fmt.Errorf("runclass: empty sweep label")
	}

	return strings.ToLower(label)[0], nil
}

// Classify partitions the sweep sequence described by the three parallel
// slices into runs, and additionally reports, for each sweep, the 1-based
// index of the run it belongs to. The first sweep always opens run 1 as a
// baseline run regardless of its label; this is a property of the recording
// protocol, not a general rule.
//
// An unrecognized transition character fails the whole classification rather
// than silently mis-tagging sweeps downstream.
func Classify(labels []string, pointCounts []int, startTimes []float64) ([]Run, []int, error) {
	if (len(labels) != len(pointCounts)) || (len(labels) != len(startTimes)) {
		return nil, nil, fmt.Errorf("runclass: all input slices must have the same length (got %d labels, %d point counts, %d start times)", len(labels), len(pointCounts), len(startTimes))
	}

	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("runclass: no sweeps to classify")
	}

	runs := []Run{{
		Category:   Baseline,
		Unit:       UnitAmperes,
		FirstSweep: 1,
		StartTime:  startTimes[0],
		PointCount: pointCounts[0],
	}}
	sweepRun := make([]int, len(labels))
	sweepRun[0] = 1

	prev, err := leadChar(labels[0])
	if err != nil {
		return nil, nil, err
	}

	for i := 1; i < len(labels); i++ {
		cur, err := leadChar(labels[i])
		if err != nil {
			return nil, nil, err
		}

		if cur == prev {
			sweepRun[i] = len(runs)
			continue
		}

		// The label's leading character changed: close the current run at
		// the previous sweep and open a new one here.
		cat, unit, err := categoryForTransition(cur)
		if err != nil {
			return nil, nil, fmt.Errorf("sweep %d: %w", i+1, err)
		}

		runs[len(runs)-1].LastSweep = i
		runs = append(runs, Run{
			Category:   cat,
			Unit:       unit,
			FirstSweep: i + 1,
			StartTime:  startTimes[i],
			PointCount: pointCounts[i],
		})
		sweepRun[i] = len(runs)
		prev = cur
	}

	runs[len(runs)-1].LastSweep = len(labels)

	return runs, sweepRun, nil
}

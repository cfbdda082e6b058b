package grouping

import (
	"reflect"
	"testing"

	"github.com/ephysio/patchnwb/runclass"
)

func TestSimultaneousSingletons(t *testing.T) {
	layer := Simultaneous([]float64{0, 1.5, 3})

	if len(layer.Groups) != 3 {
		t.Fatalf("expected 3 singleton groups, got %d", len(layer.Groups))
	}

	for i, group := range layer.Groups {
		if !reflect.DeepEqual(group, []int{i + 1}) {
			t.Errorf("group %d: expected singleton {%d}, got %v", i+1, i+1, group)
		}
		if layer.Tags[i] != NoSimultaneousTag {
			t.Errorf("group %d: expected tag %q, got %q", i+1, NoSimultaneousTag, layer.Tags[i])
		}
	}
}

func TestSimultaneousSharedTimestamp(t *testing.T) {
	// Two electrodes triggered together produce sweeps with equal start
	// times; those collapse into one group.
	layer := Simultaneous([]float64{0, 0, 2})

	if len(layer.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(layer.Groups), layer.Groups)
	}

	if !reflect.DeepEqual(layer.Groups[0], []int{1, 2}) {
		t.Errorf("expected first group {1,2}, got %v", layer.Groups[0])
	}
}

func TestSequentialPartitionsByState(t *testing.T) {
	runs := []runclass.Run{{Category: runclass.Baseline, Unit: runclass.UnitAmperes, FirstSweep: 1, LastSweep: 4}}

	layer, err := Sequential(runs, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	if len(layer.Groups) != 2 {
		t.Fatalf("expected 2 sequential groups, got %d: %v", len(layer.Groups), layer.Groups)
	}

	if !reflect.DeepEqual(layer.Groups[0], []int{1, 2}) || layer.Tags[0] != "light" {
		t.Errorf("expected {1,2} tagged light, got %v tagged %q", layer.Groups[0], layer.Tags[0])
	}

	if !reflect.DeepEqual(layer.Groups[1], []int{3, 4}) || layer.Tags[1] != "current" {
		t.Errorf("expected {3,4} tagged current, got %v tagged %q", layer.Groups[1], layer.Tags[1])
	}
}

func TestSequentialDoesNotMergeAcrossRuns(t *testing.T) {
	runs := []runclass.Run{
		{Category: runclass.Baseline, FirstSweep: 1, LastSweep: 2},
		{Category: runclass.Break, FirstSweep: 3, LastSweep: 3},
		{Category: runclass.Baseline, FirstSweep: 4, LastSweep: 5},
	}

	layer, err := Sequential(runs, []int{1, 1, 9, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	// State 1 appears in two different runs and must not merge.
	expected := [][]int{{1, 2}, {3}, {4, 5}}
	if !reflect.DeepEqual(layer.Groups, expected) {
		t.Errorf("expected groups %v, got %v", expected, layer.Groups)
	}

	if !reflect.DeepEqual(layer.Tags, []string{"current", "noStim", "current"}) {
		t.Errorf("unexpected tags: %v", layer.Tags)
	}
}

func TestSequentialUnmappedState(t *testing.T) {
	runs := []runclass.Run{{Category: runclass.Baseline, FirstSweep: 1, LastSweep: 1}}

	if _, err := Sequential(runs, []int{5}); err == nil {
		t.Fatal("expected an error for state code 5, got nil")
	}
}

func TestCheckPartition(t *testing.T) {
	type expectation struct {
		groups [][]int
		below  int
		ok     bool
	}

	for _, v := range []expectation{
		{[][]int{{1, 2}, {3}}, 3, true},
		{[][]int{{1}}, 1, true},
		{[][]int{{1, 2}}, 3, false},    // index 3 uncovered
		{[][]int{{1, 2}, {2}}, 2, false}, // index 2 duplicated
		{[][]int{{1, 4}}, 3, false},    // index 4 out of range
		{[][]int{{0, 1}}, 1, false},    // index 0 out of range
		{[][]int{{1}, {}}, 1, false},   // empty group
	} {
		err := Layer{Groups: v.groups}.CheckPartition(v.below)
		if v.ok && err != nil {
			t.Errorf("groups %v over %d: unexpected error %v", v.groups, v.below, err)
		}
		if !v.ok && err == nil {
			t.Errorf("groups %v over %d: expected an error, got nil", v.groups, v.below)
		}
	}
}

func TestFromPartitionTagCountMismatch(t *testing.T) {
	if _, err := FromPartition("conditions", [][]int{{1}, {2}}, []string{"only-one"}, 2); err == nil {
		t.Fatal("expected an error for group/tag count mismatch, got nil")
	}
}

// The union of every layer's groups must cover the full index range of the
// layer below exactly once, for all four layers of a representative session.
func TestLayerStackCoverage(t *testing.T) {
	states := []int{0, 0, 1, 1, 2, 2, 9}
	runs := []runclass.Run{
		{Category: runclass.Baseline, FirstSweep: 1, LastSweep: 4},
		{Category: runclass.Plasticity, FirstSweep: 5, LastSweep: 6},
		{Category: runclass.Break, FirstSweep: 7, LastSweep: 7},
	}
	startTimes := []float64{0, 1, 2, 3, 4, 5, 6}

	simultaneous := Simultaneous(startTimes)
	if err := simultaneous.CheckPartition(len(states)); err != nil {
		t.Errorf("simultaneous layer: %v", err)
	}

	sequential, err := Sequential(runs, states)
	if err != nil {
		t.Fatal(err)
	}
	if err := sequential.CheckPartition(len(states)); err != nil {
		t.Errorf("sequential layer: %v", err)
	}

	repetitions, err := FromPartition("repetitions", [][]int{{1, 2}, {3}, {4}}, nil, len(sequential.Groups))
	if err != nil {
		t.Fatal(err)
	}

	conditions, err := FromPartition("conditions", [][]int{{1}, {2}, {3}}, []string{"baselineStim", "plasticityInduction", "noStim"}, len(repetitions.Groups))
	if err != nil {
		t.Fatal(err)
	}

	if err := conditions.CheckPartition(len(repetitions.Groups)); err != nil {
		t.Errorf("condition layer: %v", err)
	}
}

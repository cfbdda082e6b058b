package series

import (
	"math"
	"testing"

	"github.com/ephysio/patchnwb/nwb"
	"github.com/ephysio/patchnwb/recording"
	"github.com/ephysio/patchnwb/runclass"
)

func testParams(category runclass.Category, unit string, state int) Params {
	return Params{
		Sweep: recording.Sweep{
			SweepNumber: 7,
			PointCount:  3,
			StartTime:   2.5,
			State:       state,
			Label:       "1a",
			Samples:     []float64{1, -2, 4},
		},
		Run: runclass.Run{
			Category:   category,
			Unit:       unit,
			FirstSweep: 5,
			LastSweep:  9,
		},
		RateHz:    10000,
		Electrode: "elec0",
	}
}

func TestBuildVoltageClampLightBaseline(t *testing.T) {
	stim, resp, err := Build(testParams(runclass.Baseline, runclass.UnitAmperes, recording.StateLightBaseline))
	if err != nil {
		t.Fatal(err)
	}

	if stim.ClampMode != nwb.VoltageClamp || resp.ClampMode != nwb.VoltageClamp {
		t.Errorf("expected voltage clamp on both sides, got %s / %s", stim.ClampMode, resp.ClampMode)
	}

	if stim.Unit != runclass.UnitAmperes || resp.Unit != runclass.UnitAmperes {
		t.Errorf("expected ampere units, got %s / %s", stim.Unit, resp.Unit)
	}

	if stim.Description == resp.Description {
		t.Error("stimulus and response must carry distinct descriptions")
	}

	// Stimulus and response reference the same physical samples.
	if &stim.Data[0] != &resp.Data[0] {
		t.Error("stimulus and response must share one backing array")
	}

	if expected := 1 * VoltageClampScale; math.Abs(resp.Data[0]-expected) > 1e-30 {
		t.Errorf("expected first sample %g, got %g", expected, resp.Data[0])
	}
}

func TestBuildVoltageClampCurrentBaseline(t *testing.T) {
	stim, _, err := Build(testParams(runclass.Baseline, runclass.UnitAmperes, recording.StateCurrentBaseline))
	if err != nil {
		t.Fatal(err)
	}

	if stim.Description != descCurrentBaselineStim {
		t.Errorf("unexpected stimulus description: %s", stim.Description)
	}
}

func TestBuildPlasticityPair(t *testing.T) {
	stim, resp, err := Build(testParams(runclass.Plasticity, runclass.UnitVolts, recording.StateInduction))
	if err != nil {
		t.Fatal(err)
	}

	if stim.ClampMode != nwb.CurrentClamp || resp.ClampMode != nwb.CurrentClamp {
		t.Errorf("expected current clamp on both sides, got %s / %s", stim.ClampMode, resp.ClampMode)
	}

	if stim.Unit != runclass.UnitAmperes {
		t.Errorf("plasticity stimulus must be in amperes, got %s", stim.Unit)
	}

	if resp.Unit != runclass.UnitVolts {
		t.Errorf("plasticity response must carry the run unit, got %s", resp.Unit)
	}

	if &stim.Data[0] != &resp.Data[0] {
		t.Error("stimulus and response must share one backing array")
	}

	if expected := 4 * CurrentClampScale; math.Abs(resp.Data[2]-expected) > 1e-18 {
		t.Errorf("expected third sample %g, got %g", expected, resp.Data[2])
	}
}

func TestBuildBreakSweep(t *testing.T) {
	// Break sweeps carry state 9 but are legal regardless of state wording.
	_, resp, err := Build(testParams(runclass.Break, runclass.UnitAmperes, recording.StateBreak))
	if err != nil {
		t.Fatal(err)
	}

	if resp.ClampMode != nwb.VoltageClamp {
		t.Errorf("break sweeps record in voltage clamp, got %s", resp.ClampMode)
	}
}

func TestBuildUnmappedState(t *testing.T) {
	if _, _, err := Build(testParams(runclass.Baseline, runclass.UnitAmperes, 5)); err == nil {
		t.Fatal("expected an error for unmapped state code 5 in a baseline run, got nil")
	}
}

func TestBuildDeterminism(t *testing.T) {
	p := testParams(runclass.Baseline, runclass.UnitAmperes, recording.StateLightBaseline)

	a1, b1, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}
	a2, b2, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}

	if a1.Name != a2.Name || a1.Description != a2.Description || b1.Unit != b2.Unit {
		t.Error("identical input must produce identical series metadata")
	}
	for i := range a1.Data {
		if a1.Data[i] != a2.Data[i] || b1.Data[i] != b2.Data[i] {
			t.Fatalf("identical input must produce identical data at index %d", i)
		}
	}
}

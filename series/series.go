// Package series builds the per-sweep stimulus and response records. The
// recording hardware stores one physical trace per sweep; stimulus and
// response series share that array and differ only in metadata.
package series

import (
	"fmt"

	"github.com/ephysio/patchnwb/nwb"
	"github.com/ephysio/patchnwb/recording"
	"github.com/ephysio/patchnwb/runclass"
)

// Amplifier calibration constants mapping raw digitizer values to physical
// units. These are device configuration, measured at setup time; they are
// never derived from the data.
const (
	VoltageClampScale = 1.0 / 1e13
	CurrentClampScale = 2.5 / 1e6
)

// Descriptions attached to the series, by protocol phase.
const (
	descPlasticityStimulus  = "Plasticity protocol: current injection paired with optogenetic stimulation"
	descPlasticityResponse  = "Plasticity protocol: membrane voltage during induction"
	descLightBaselineStim   = "Baseline: light stimulation of presynaptic terminals"
	descLightBaselineResp   = "Baseline: postsynaptic current evoked by light stimulation"
	descCurrentBaselineStim = "Baseline: somatic current step"
	descCurrentBaselineResp = "Baseline: postsynaptic current evoked by somatic current step"
)

// Params collects everything needed to build one sweep's series pair.
type Params struct {
	Sweep     recording.Sweep
	Run       runclass.Run
	RateHz    float64
	Electrode string
}

// Build produces the stimulus and response records for one sweep. Plasticity
// runs are recorded in current clamp; everything else is voltage clamp, with
// wording chosen by the sweep's state code. A state code that has no wording
// under a non-plasticity, non-break run fails the build.
func Build(p Params) (stimulus, response nwb.PatchClampSeries, err error) {
	if p.Run.Category == runclass.Plasticity {
		data := scaled(p.Sweep.Samples, CurrentClampScale)
		return buildCurrentClampPair(p, data)
	}

	stimDesc, respDesc, err := baselineDescriptions(p)
	if err != nil {
		return nwb.PatchClampSeries{}, nwb.PatchClampSeries{}, err
	}

	data := scaled(p.Sweep.Samples, VoltageClampScale)

	stimulus = nwb.PatchClampSeries{
		Name:         fmt.Sprintf("stimulus_sweep_%03d", p.Sweep.SweepNumber),
		ClampMode:    nwb.VoltageClamp,
		SweepNumber:  p.Sweep.SweepNumber,
		Electrode:    p.Electrode,
		Description:  stimDesc,
		Unit:         runclass.UnitAmperes,
		StartingTime: p.Sweep.StartTime,
		RateHz:       p.RateHz,
		Data:         data,
	}

	response = nwb.PatchClampSeries{
		Name:         fmt.Sprintf("response_sweep_%03d", p.Sweep.SweepNumber),
		ClampMode:    nwb.VoltageClamp,
		SweepNumber:  p.Sweep.SweepNumber,
		Electrode:    p.Electrode,
		Description:  respDesc,
		Unit:         p.Run.Unit,
		StartingTime: p.Sweep.StartTime,
		RateHz:       p.RateHz,
		Data:         data,
	}

	return stimulus, response, nil
}

func baselineDescriptions(p Params) (stim, resp string, err error) {
	if p.Run.Category == runclass.Break {
		// Break sweeps are kept as-is: they document the gap between
		// protocol blocks.
		return "Break between protocol blocks", "Break between protocol blocks", nil
	}

	switch p.Sweep.State {
	case recording.StateLightBaseline:
		return descLightBaselineStim, descLightBaselineResp, nil
	case recording.StateCurrentBaseline:
		return descCurrentBaselineStim, descCurrentBaselineResp, nil
	}

	return "", "", fmt.Errorf("series: sweep %d has state code %d, which has no meaning in a %s run", p.Sweep.SweepNumber, p.Sweep.State, p.Run.Category)
}

// buildCurrentClampPair shares one scaled array between stimulus and
// response; the hardware records a single physical trace per sweep.
func buildCurrentClampPair(p Params, data []float64) (stimulus, response nwb.PatchClampSeries, err error) {
	stimulus = nwb.PatchClampSeries{
		Name:         fmt.Sprintf("stimulus_sweep_%03d", p.Sweep.SweepNumber),
		ClampMode:    nwb.CurrentClamp,
		SweepNumber:  p.Sweep.SweepNumber,
		Electrode:    p.Electrode,
		Description:  descPlasticityStimulus,
		Unit:         runclass.UnitAmperes,
		StartingTime: p.Sweep.StartTime,
		RateHz:       p.RateHz,
		Data:         data,
	}

	response = nwb.PatchClampSeries{
		Name:         fmt.Sprintf("response_sweep_%03d", p.Sweep.SweepNumber),
		ClampMode:    nwb.CurrentClamp,
		SweepNumber:  p.Sweep.SweepNumber,
		Electrode:    p.Electrode,
		Description:  descPlasticityResponse,
		Unit:         p.Run.Unit,
		StartingTime: p.Sweep.StartTime,
		RateHz:       p.RateHz,
		Data:         data,
	}

	return stimulus, response, nil
}

func scaled(samples []float64, factor float64) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v * factor
	}

	return out
}

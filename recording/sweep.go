// Package recording loads a laboratory patch-clamp session bundle: the
// per-sweep metadata table, the raw sample arrays, and the session-level
// acquisition parameters.
package recording

// State codes assigned by the acquisition software to each sweep.
const (
	StateLightBaseline   = 0 // light stimulation baseline
	StateCurrentBaseline = 1 // current stimulation baseline
	StateInduction       = 2 // plasticity induction
	StateBreak           = 9 // break between protocol blocks
)

// Sweep is one recorded trace. SweepNumber is 1-based and matches physical
// recording order; it is the sole ordering key for everything downstream.
type Sweep struct {
	SweepNumber int     `csv:"sweep"`
	PointCount  int     `csv:"points"`
	StartTime   float64 `csv:"start_time_s"`
	State       int     `csv:"state"`
	Label       string  `csv:"label"`

	// Samples are the raw, unscaled values as digitized. Scaling to physical
	// units happens at series-construction time.
	Samples []float64 `csv:"-"`
}

// Recording is one fully loaded session.
type Recording struct {
	Sweeps []Sweep

	// SamplingIntervalSeconds is the global sampling interval shared by every
	// sweep in the session.
	SamplingIntervalSeconds float64
}

// SamplingRateHz derives the acquisition rate from the sampling interval.
func (r *Recording) SamplingRateHz() float64 {
	if r.SamplingIntervalSeconds == 0 {
		return 0
	}

	return 1.0 / r.SamplingIntervalSeconds
}

// Labels returns the per-sweep label strings in sweep order.
func (r *Recording) Labels() []string {
	out := make([]string, len(r.Sweeps))
	for i, s := range r.Sweeps {
		out[i] = s.Label
	}

	return out
}

// PointCounts returns the per-sweep sample counts in sweep order.
func (r *Recording) PointCounts() []int {
	out := make([]int, len(r.Sweeps))
	for i, s := range r.Sweeps {
		out[i] = s.PointCount
	}

	return out
}

// StartTimes returns the per-sweep start times in sweep order.
func (r *Recording) StartTimes() []float64 {
	out := make([]float64, len(r.Sweeps))
	for i, s := range r.Sweeps {
		out[i] = s.StartTime
	}

	return out
}

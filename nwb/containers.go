// Package nwb defines the schema container objects for the exchange file and
// owns their on-disk serialization. Nothing here derives data: callers hand
// over fully populated containers and the writer materializes them once.
package nwb

import "image"

// ClampMode distinguishes the two intracellular recording modes.
type ClampMode string

const (
	VoltageClamp ClampMode = "voltage_clamp"
	CurrentClamp ClampMode = "current_clamp"
)

// PatchClampSeries is one stimulus or response trace for one sweep.
type PatchClampSeries struct {
	Name        string    `json:"name"`
	ClampMode   ClampMode `json:"clamp_mode"`
	SweepNumber int       `json:"sweep_number"`
	Electrode   string    `json:"electrode"`
	Description string    `json:"description"`
	Unit        string    `json:"unit"`

	// StartingTime is seconds relative to session start; RateHz is the
	// acquisition rate.
	StartingTime float64 `json:"starting_time_s"`
	RateHz       float64 `json:"rate_hz"`

	// Data holds the scaled samples. Stimulus and response for one sweep may
	// share the same backing array; the writer stores each sweep's block once
	// and both series reference it.
	Data []float64 `json:"-"`
}

// IndexTable is one grouping layer: every group is a list of 1-based indices
// into the layer below (sweeps for the first layer), with an optional
// per-group tag.
type IndexTable struct {
	Name   string   `json:"name"`
	Groups [][]int  `json:"groups"`
	Tags   []string `json:"tags,omitempty"`
}

// File is the fully populated session, ready to be written exactly once.
type File struct {
	Session   Session   `json:"session"`
	Subject   Subject   `json:"subject"`
	Device    Device    `json:"device"`
	Electrode Electrode `json:"electrode"`

	Stimuli   []PatchClampSeries `json:"stimuli"`
	Responses []PatchClampSeries `json:"responses"`

	SimultaneousRecordings IndexTable `json:"simultaneous_recordings"`
	SequentialRecordings   IndexTable `json:"sequential_recordings"`
	Repetitions            IndexTable `json:"repetitions"`
	Conditions             IndexTable `json:"experimental_conditions"`

	// SliceImage is the acquisition slice photograph; may be nil when the
	// session has none.
	SliceImage image.Image `json:"-"`
}

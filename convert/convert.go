// Package convert runs the one-shot conversion: classify sweeps into runs,
// build the per-sweep stimulus/response series, assemble the four grouping
// layers, and populate the output containers. All inputs are immutable; the
// same inputs always produce the same populated file.
package convert

import (
	"image"

	"github.com/ephysio/patchnwb/grouping"
	"github.com/ephysio/patchnwb/nwb"
	"github.com/ephysio/patchnwb/recording"
	"github.com/ephysio/patchnwb/runclass"
	"github.com/ephysio/patchnwb/series"
)

// Config is the complete fixed-metadata block for one conversion: session
// descriptors plus the per-dataset grouping declaration. Passed explicitly;
// there is no process-wide state.
type Config struct {
	Session nwb.SessionConfig
	Dataset grouping.DatasetConfig
}

// Convert derives the populated output file from one loaded recording, its
// slice image (may be nil), and the dataset configuration. Any
// classification or partition error rejects the whole conversion; nothing is
// written here.
func Convert(rec *recording.Recording, sliceImage image.Image, cfg Config) (*nwb.File, error) {
	runs, sweepRun, err := runclass.Classify(rec.Labels(), rec.PointCounts(), rec.StartTimes())
	if err != nil {
		return nil, err
	}

	file := &nwb.File{
		Session:    cfg.Session.Session,
		Subject:    cfg.Session.Subject,
		Device:     cfg.Session.Device,
		Electrode:  cfg.Session.Electrode,
		SliceImage: sliceImage,
	}

	rate := rec.SamplingRateHz()
	for i, sweep := range rec.Sweeps {
		stim, resp, err := series.Build(series.Params{
			Sweep:     sweep,
			Run:       runs[sweepRun[i]-1],
			RateHz:    rate,
			Electrode: cfg.Session.Electrode.Name,
		})
		if err != nil {
			return nil, err
		}

		file.Stimuli = append(file.Stimuli, stim)
		file.Responses = append(file.Responses, resp)
	}

	if err := buildLayers(file, rec, runs, cfg.Dataset); err != nil {
		return nil, err
	}

	return file, nil
}

func buildLayers(file *nwb.File, rec *recording.Recording, runs []runclass.Run, dataset grouping.DatasetConfig) error {
	states := make([]int, len(rec.Sweeps))
	for i, s := range rec.Sweeps {
		states[i] = s.State
	}

	simultaneous := grouping.Simultaneous(rec.StartTimes())

	sequential, err := grouping.Sequential(runs, states)
	if err != nil {
		return err
	}

	repetitions, err := grouping.FromPartition("repetitions", dataset.Repetitions, nil, len(sequential.Groups))
	if err != nil {
		return err
	}

	conditionGroups, conditionTags := dataset.ConditionGroups()
	conditions, err := grouping.FromPartition("conditions", conditionGroups, conditionTags, len(repetitions.Groups))
	if err != nil {
		return err
	}

	file.SimultaneousRecordings = indexTable("simultaneous_recordings", simultaneous)
	file.SequentialRecordings = indexTable("sequential_recordings", sequential)
	file.Repetitions = indexTable("repetitions", repetitions)
	file.Conditions = indexTable("experimental_conditions", conditions)

	return nil
}

func indexTable(name string, layer grouping.Layer) nwb.IndexTable {
	return nwb.IndexTable{Name: name, Groups: layer.Groups, Tags: layer.Tags}
}

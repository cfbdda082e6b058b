package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/jfcg/butter"
	"github.com/montanaflynn/stats"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/ephysio/patchnwb/nwb"
	"github.com/ephysio/patchnwb/recording"
)

// LowPassFilter runs the samples through a first-order low-pass filter at
// cutoffHz. Preview-only: the data written into the output file is never
// filtered.
func LowPassFilter(vals []float64, signalHz, cutoffHz float64) ([]float64, error) {
	wc := 2.0 * math.Pi * cutoffHz / signalHz

	filt := butter.NewLowPass1(wc)
	if filt == nil {
		return nil, fmt.Errorf("Invalid low-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", wc)
	}

	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		out = append(out, filt.Next(v))
	}

	return out, nil
}

func plotSweeps(outPath string, responses []nwb.PatchClampSeries, signalHz, lowPassHz float64) error {
	base := strings.TrimSuffix(outPath, ".nwbz")

	for _, resp := range responses {
		vals := resp.Data

		if lowPassHz > 0 {
			var err error
			if vals, err = LowPassFilter(vals, signalHz, lowPassHz); err != nil {
				return err
			}
		}

		if err := plotSweepFloat(fmt.Sprintf("%s_sweep_%03d.png", base, resp.SweepNumber), vals); err != nil {
			return err
		}
	}

	return nil
}

func plotSweepFloat(filename string, floatVals []float64) error {
	graph := chart.Chart{
		Width:  512,
		Height: 256,
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: intSeq(len(floatVals)),
				YValues: floatVals,
			},
		},
	}

	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return err
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return nil
}

func intSeq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

// SweepQC is one row of the per-sweep summary statistics table.
type SweepQC struct {
	Sweep  int     `csv:"sweep"`
	Label  string  `csv:"label"`
	State  int     `csv:"state"`
	Points int     `csv:"points"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"stddev"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
}

func writeQCSummary(outPath string, rec *recording.Recording) error {
	rows := make([]SweepQC, 0, len(rec.Sweeps))

	for _, sweep := range rec.Sweeps {
		mean, err := stats.Mean(sweep.Samples)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", sweep.SweepNumber, err)
		}
		sd, err := stats.StandardDeviation(sweep.Samples)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", sweep.SweepNumber, err)
		}
		min, err := stats.Min(sweep.Samples)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", sweep.SweepNumber, err)
		}
		max, err := stats.Max(sweep.Samples)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", sweep.SweepNumber, err)
		}

		rows = append(rows, SweepQC{
			Sweep:  sweep.SweepNumber,
			Label:  sweep.Label,
			State:  sweep.State,
			Points: sweep.PointCount,
			Mean:   mean,
			StdDev: sd,
			Min:    min,
			Max:    max,
		})
	}

	outFile, err := os.Create(strings.TrimSuffix(outPath, ".nwbz") + "_qc.tsv")
	if err != nil {
		return err
	}
	defer outFile.Close()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = '\t'
		return gocsv.NewSafeCSVWriter(w)
	})

	return gocsv.Marshal(&rows, outFile)
}

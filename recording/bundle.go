package recording

import (
	"archive/zip"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	"github.com/ephysio/patchnwb"
)

// Bundle member names, fixed by the lab's export script.
const (
	sweepTableName  = "sweeps.tsv"
	sessionInfoName = "session.json"
	sweepDataFormat = "sweep_%03d.bin"
)

type sessionInfo struct {
	SamplingIntervalSeconds float64 `json:"sampling_interval_s"`
}

// ReadBundle loads a session bundle from path, which may be local or a gs://
// object (client may be nil for local paths). The bundle is a ZIP holding
// sweeps.tsv, session.json, and one little-endian float64 sweep_NNN.bin per
// sweep.
func ReadBundle(path string, client *storage.Client) (*Recording, error) {
	f, nbytes, err := patchnwb.MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	zr, err := zip.NewReader(f, nbytes)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return readBundleZip(zr)
}

func readBundleZip(zr *zip.Reader) (*Recording, error) {
	members := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		members[zf.Name] = zf
	}

	rec := &Recording{}

	info, err := readSessionInfo(members)
	if err != nil {
		return nil, err
	}
	if info.SamplingIntervalSeconds <= 0 {
		return nil, fmt.Errorf("recording: session.json declares a non-positive sampling interval (%f)", info.SamplingIntervalSeconds)
	}
	rec.SamplingIntervalSeconds = info.SamplingIntervalSeconds

	if rec.Sweeps, err = readSweepTable(members); err != nil {
		return nil, err
	}

	for i := range rec.Sweeps {
		samples, err := readSweepSamples(members, rec.Sweeps[i].SweepNumber)
		if err != nil {
			return nil, err
		}

		if len(samples) != rec.Sweeps[i].PointCount {
			return nil, fmt.Errorf("recording: sweep %d declares %d points but its data file holds %d", rec.Sweeps[i].SweepNumber, rec.Sweeps[i].PointCount, len(samples))
		}

		rec.Sweeps[i].Samples = samples
	}

	return rec, nil
}

func readSessionInfo(members map[string]*zip.File) (sessionInfo, error) {
	out := sessionInfo{}

	zf, exists := members[sessionInfoName]
	if !exists {
		return out, fmt.Errorf("recording: bundle has no %s", sessionInfoName)
	}

	r, err := zf.Open()
	if err != nil {
		return out, pfx.Err(err)
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, pfx.Err(fmt.Errorf("%s: %w", sessionInfoName, err))
	}

	return out, nil
}

func readSweepTable(members map[string]*zip.File) ([]Sweep, error) {
	zf, exists := members[sweepTableName]
	if !exists {
		return nil, fmt.Errorf("recording: bundle has no %s", sweepTableName)
	}

	r, err := zf.Open()
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		c := csv.NewReader(in)
		c.Comma = '\t'
		c.LazyQuotes = true
		return c
	})

	sweeps := []Sweep{}
	if err := gocsv.Unmarshal(r, &sweeps); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", sweepTableName, err))
	}

	if len(sweeps) == 0 {
		return nil, fmt.Errorf("recording: %s holds no sweeps", sweepTableName)
	}

	// Rows may appear in any order in the export; recording order governs.
	sort.Slice(sweeps, func(i, j int) bool {
		return sweeps[i].SweepNumber < sweeps[j].SweepNumber
	})

	// Sweep numbers must be dense 1..N: they are the join key for the data
	// files and for every grouping layer built downstream.
	for i, s := range sweeps {
		if s.SweepNumber != i+1 {
			return nil, fmt.Errorf("recording: sweep numbers are not dense 1..%d (found %d at position %d)", len(sweeps), s.SweepNumber, i+1)
		}
	}

	return sweeps, nil
}

func readSweepSamples(members map[string]*zip.File, sweepNumber int) ([]float64, error) {
	name := fmt.Sprintf(sweepDataFormat, sweepNumber)

	zf, exists := members[name]
	if !exists {
		return nil, fmt.Errorf("recording: bundle has no %s", name)
	}

	r, err := zf.Open()
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", name, err))
	}

	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("recording: %s is %d bytes, not a whole number of float64 values", name, len(raw))
	}

	samples := make([]float64, len(raw)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}

	return samples, nil
}

package nwb

import (
	"archive/zip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image/png"
	"math"
	"os"

	"github.com/carbocation/pfx"
)

// Names of the members inside a written file.
const (
	manifestName    = "nwb.json"
	imageName       = "slice_image.png"
	sweepDataFormat = "data/sweep_%03d.f64"
)

// WriteFile serializes the populated file to path in one pass. On any error
// the partially written output is removed so that a failed conversion never
// leaves a readable file behind.
func WriteFile(path string, file *File) (err error) {
	if err := checkSeries(file); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = pfx.Err(closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	zw := zip.NewWriter(out)

	if err = writeManifest(zw, file); err != nil {
		return err
	}

	// One data block per sweep: the stimulus and response series for a sweep
	// share the same physical samples and both reference this block.
	for i := range file.Responses {
		if err = writeSweepData(zw, file.Responses[i].SweepNumber, file.Responses[i].Data); err != nil {
			return err
		}
	}

	if file.SliceImage != nil {
		w, werr := zw.Create(imageName)
		if werr != nil {
			return pfx.Err(werr)
		}
		if err = png.Encode(w, file.SliceImage); err != nil {
			return pfx.Err(err)
		}
	}

	if err = zw.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// checkSeries rejects files whose series lists are malformed before any bytes
// are written.
func checkSeries(file *File) error {
	if len(file.Stimuli) != len(file.Responses) {
		return fmt.Errorf("nwb: %d stimuli but %d responses; every sweep must produce one of each", len(file.Stimuli), len(file.Responses))
	}

	for i := range file.Responses {
		if file.Stimuli[i].SweepNumber != file.Responses[i].SweepNumber {
			return fmt.Errorf("nwb: stimulus/response pair %d disagrees on sweep number (%d vs %d)", i, file.Stimuli[i].SweepNumber, file.Responses[i].SweepNumber)
		}
	}

	return nil
}

func writeManifest(zw *zip.Writer, file *File) error {
	w, err := zw.Create(manifestName)
	if err != nil {
		return pfx.Err(err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeSweepData(zw *zip.Writer, sweepNumber int, data []float64) error {
	w, err := zw.Create(fmt.Sprintf(sweepDataFormat, sweepNumber))
	if err != nil {
		return pfx.Err(err)
	}

	raw := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	if _, err := w.Write(raw); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// patch2nwb converts one patch-clamp session bundle (sweep traces + metadata
// + slice image) into a single hierarchical exchange file. One-shot batch
// conversion: any classification or configuration error aborts the run with
// no output file left behind.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/disintegration/imaging"

	"github.com/ephysio/patchnwb"
	"github.com/ephysio/patchnwb/convert"
	"github.com/ephysio/patchnwb/grouping"
	"github.com/ephysio/patchnwb/nwb"
	"github.com/ephysio/patchnwb/recording"
)

var client *storage.Client

func main() {
	var bundlePath, imagePath, configPath, groupingPath, outPath string
	var createPNG, writeQC bool
	var lowPassHz float64
	var imageMaxPx int

	flag.StringVar(&bundlePath, "bundle", "", "Recording bundle (.zip exported by the acquisition rig; may be a gs:// path)")
	flag.StringVar(&imagePath, "image", "", "(Optional) Slice image (TIFF/PNG/JPEG/BMP; may be a gs:// path)")
	flag.StringVar(&configPath, "config", "", "Session metadata JSON (subject, device, electrode)")
	flag.StringVar(&groupingPath, "grouping", "", "Per-dataset grouping JSON (repetition and condition partitions)")
	flag.StringVar(&outPath, "out", "", "Output file to create")
	flag.BoolVar(&createPNG, "createpng", false, "Also emit a preview PNG per sweep next to the output file?")
	flag.Float64Var(&lowPassHz, "low_pass_hz", 0, "(Optional) If creating preview PNGs, low-pass filter at this many cycles per second (0 disables)")
	flag.BoolVar(&writeQC, "qc", false, "Also emit a per-sweep summary statistics TSV next to the output file?")
	flag.IntVar(&imageMaxPx, "image_max_px", 0, "(Optional) Downsample the slice image so its longest edge is at most this many pixels (0 disables)")
	flag.Parse()

	if bundlePath == "" || configPath == "" || groupingPath == "" || outPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	bundlePath = patchnwb.ExpandHome(bundlePath)
	imagePath = patchnwb.ExpandHome(imagePath)
	configPath = patchnwb.ExpandHome(configPath)
	groupingPath = patchnwb.ExpandHome(groupingPath)
	outPath = patchnwb.ExpandHome(outPath)

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	for _, path := range []string{bundlePath, imagePath} {
		if strings.HasPrefix(path, "gs://") {
			var err error
			client, err = storage.NewClient(context.Background())
			if err != nil {
				log.Fatalln(err)
			}

			break
		}
	}

	if err := run(bundlePath, imagePath, configPath, groupingPath, outPath, createPNG, writeQC, lowPassHz, imageMaxPx); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

func run(bundlePath, imagePath, configPath, groupingPath, outPath string, createPNG, writeQC bool, lowPassHz float64, imageMaxPx int) error {
	sessionConfig, err := nwb.ParseSessionConfigFromPath(configPath)
	if err != nil {
		return err
	}

	datasetConfig, err := grouping.ParseDatasetConfigFromPath(groupingPath)
	if err != nil {
		return err
	}

	rec, err := recording.ReadBundle(bundlePath, client)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d sweeps at %.0f Hz from %s\n", len(rec.Sweeps), rec.SamplingRateHz(), bundlePath)

	var sliceImage image.Image
	if imagePath != "" {
		if sliceImage, err = loadSliceImage(imagePath, imageMaxPx); err != nil {
			return err
		}
	}

	file, err := convert.Convert(rec, sliceImage, convert.Config{Session: sessionConfig, Dataset: datasetConfig})
	if err != nil {
		return err
	}
	log.Printf("Classified %d sequential groups, %d repetitions, %d conditions\n",
		len(file.SequentialRecordings.Groups), len(file.Repetitions.Groups), len(file.Conditions.Groups))

	if createPNG {
		if err := plotSweeps(outPath, file.Responses, rec.SamplingRateHz(), lowPassHz); err != nil {
			return err
		}
	}

	if writeQC {
		if err := writeQCSummary(outPath, rec); err != nil {
			return err
		}
	}

	if err := nwb.WriteFile(outPath, file); err != nil {
		return err
	}
	log.Printf("Wrote %s\n", outPath)

	return nil
}

func loadSliceImage(path string, maxPx int) (image.Image, error) {
	f, _, err := patchnwb.MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	// The schema expects a 2D grayscale array.
	gray := imaging.Grayscale(img)

	if maxPx > 0 && (gray.Bounds().Dx() > maxPx || gray.Bounds().Dy() > maxPx) {
		return imaging.Fit(gray, maxPx, maxPx, imaging.Lanczos), nil
	}

	return gray, nil
}

package nwb

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// Session holds session-level descriptive metadata. Pure configuration: none
// of it is derived from the recording.
type Session struct {
	Identifier   string `json:"identifier"`
	Description  string `json:"description"`
	StartTime    string `json:"start_time"`
	Experimenter string `json:"experimenter"`
	Lab          string `json:"lab"`
	Institution  string `json:"institution"`
	ProjectName  string `json:"project_name"`
}

// Subject describes the animal. Age, weight, and sex are frequently absent
// from older lab notebooks, so absence must be representable.
type Subject struct {
	Identifier  string      `json:"identifier"`
	Species     string      `json:"species"`
	Genotype    string      `json:"genotype"`
	AgeDays     null.Int    `json:"age_days"`
	WeightGrams null.Float  `json:"weight_grams"`
	Sex         null.String `json:"sex"`
}

// Device describes the acquisition amplifier.
type Device struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer"`
}

// Electrode describes the single recording electrode used in this protocol.
type Electrode struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Device            string     `json:"device"`
	ResistanceMegaohm null.Float `json:"resistance_megaohm"`
}

// SessionConfig is the complete fixed-metadata block for one conversion,
// parsed from a JSON file kept alongside the dataset.
type SessionConfig struct {
	Session   Session   `json:"session"`
	Subject   Subject   `json:"subject"`
	Device    Device    `json:"device"`
	Electrode Electrode `json:"electrode"`
}

// ParseSessionConfigFromPath reads and minimally validates a session config.
func ParseSessionConfigFromPath(path string) (SessionConfig, error) {
	out := SessionConfig{}

	f, err := os.Open(path)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return out, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	if out.Session.Identifier == "" {
		return out, fmt.Errorf("nwb: %s: session.identifier must be set", path)
	}
	if out.Electrode.Name == "" {
		return out, fmt.Errorf("nwb: %s: electrode.name must be set", path)
	}

	return out, nil
}

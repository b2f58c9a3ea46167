package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cine-ai/go-grade/grade"
	"github.com/cine-ai/go-grade/pipeline"
	"github.com/cine-ai/go-grade/scene"
)

// FrameRecord is the reporting view of one analyzed frame.
type FrameRecord struct {
	Clip   string                 `json:"clip"`
	Frame  int                    `json:"frame"`
	Scene  string                 `json:"scene,omitempty"`
	Params grade.CorrectionParams `json:"params"`
	CDL    grade.CDL              `json:"cdl"`
	Flags  []scene.Flag           `json:"flags,omitempty"`
	Usable bool                   `json:"usable"`

	Skipped bool   `json:"skipped,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	Clips   int            `json:"clips"`
	Frames  int            `json:"frames"`
	Skipped int            `json:"skipped"`
	Usable  int            `json:"usable"`
	Methods map[string]int `json:"methods"`
}

// FromResults converts session results into frame records.
func FromResults(results []pipeline.FrameResult) []FrameRecord {
	records := make([]FrameRecord, 0, len(results))
	for _, r := range results {
		records = append(records, FrameRecord{
			Clip:    r.Clip,
			Frame:   r.Frame,
			Scene:   string(r.Analysis.Scene),
			Params:  r.Analysis.Params,
			CDL:     r.Analysis.CDL,
			Flags:   r.Flags,
			Usable:  r.Usable,
			Skipped: r.Skipped,
			Err:     r.Err,
		})
	}
	return records
}

// Summarize computes batch totals over a set of frame records.
func Summarize(records []FrameRecord) Summary {
	s := Summary{Methods: make(map[string]int)}
	clips := make(map[string]struct{})
	for _, r := range records {
		clips[r.Clip] = struct{}{}
		s.Frames++
		if r.Skipped {
			s.Skipped++
		}
		if r.Usable {
			s.Usable++
		}
		if r.Params.Method != "" {
			s.Methods[string(r.Params.Method)]++
		}
	}
	s.Clips = len(clips)
	return s
}

// WriteJSON writes records and summary as one JSON document.
func WriteJSON(path string, records []FrameRecord, summary Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	doc := struct {
		Summary Summary       `json:"summary"`
		Frames  []FrameRecord `json:"frames"`
	}{Summary: summary, Frames: records}
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(err, "encoding report %s", path)
	}
	return nil
}

// WriteCSV writes one row per frame with the key correction values.
func WriteCSV(path string, records []FrameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"clip", "frame", "scene", "method", "exposure_ev", "contrast",
		"slope", "power", "flags", "usable", "skipped",
	}
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing report %s", path)
	}
	for _, r := range records {
		row := []string{
			r.Clip,
			strconv.Itoa(r.Frame),
			r.Scene,
			string(r.Params.Method),
			strconv.FormatFloat(r.Params.ExposureEV, 'f', 4, 64),
			strconv.FormatFloat(r.Params.ContrastFactor, 'f', 4, 64),
			strconv.FormatFloat(r.CDL.Slope, 'f', 4, 64),
			strconv.FormatFloat(r.CDL.Power, 'f', 4, 64),
			flagRules(r.Flags),
			strconv.FormatBool(r.Usable),
			strconv.FormatBool(r.Skipped),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing report %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing report %s", path)
}

// WriteText writes a human-readable batch summary.
func WriteText(path string, summary Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	fmt.Fprintf(f, "clips:   %d\n", summary.Clips)
	fmt.Fprintf(f, "frames:  %d\n", summary.Frames)
	fmt.Fprintf(f, "skipped: %d\n", summary.Skipped)
	fmt.Fprintf(f, "usable:  %d\n", summary.Usable)
	for _, m := range []string{"face_weighted", "global_only", "scene_rule"} {
		if n, ok := summary.Methods[m]; ok {
			fmt.Fprintf(f, "method %-14s %d\n", m+":", n)
		}
	}
	return nil
}

func flagRules(flags []scene.Flag) string {
	s := ""
	for i, fl := range flags {
		if i > 0 {
			s += ";"
		}
		s += fl.Rule
	}
	return s
}

package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cine-ai/go-grade/grade"
	"github.com/cine-ai/go-grade/pipeline"
	"github.com/cine-ai/go-grade/scene"
)

func sampleRecords() []FrameRecord {
	return []FrameRecord{
		{
			Clip: "clip-a", Frame: 1, Scene: "outdoor_day",
			Params: grade.CorrectionParams{ExposureEV: -0.3, ContrastFactor: 1.05, Method: grade.MethodSceneRule},
			CDL:    grade.CDL{Slope: 0.8123, Offset: 0, Power: 0.9524, Saturation: 1},
			Usable: true,
		},
		{
			Clip: "clip-a", Frame: 2,
			Params: grade.CorrectionParams{ExposureEV: 0.31, ContrastFactor: 1.25, Method: grade.MethodFaceWeighted},
			Flags:  []scene.Flag{{Rule: "midtone_too_dark", Severity: scene.SeverityMedium, Value: 0.2, Threshold: 0.28}},
		},
		{Clip: "clip-b", Frame: 1, Skipped: true, Err: "decode failed"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())
	assert.Equal(t, 2, s.Clips)
	assert.Equal(t, 3, s.Frames)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Usable)
	assert.Equal(t, 1, s.Methods["scene_rule"])
	assert.Equal(t, 1, s.Methods["face_weighted"])
}

func TestFromResults(t *testing.T) {
	results := []pipeline.FrameResult{
		{
			Clip: "clip-a", Frame: 7,
			Analysis: pipeline.Analysis{
				Params: grade.CorrectionParams{Method: grade.MethodGlobalOnly},
				Scene:  scene.TypeIndoorHuman,
			},
			Usable: true,
		},
	}
	records := FromResults(results)
	require.Len(t, records, 1)
	assert.Equal(t, "clip-a", records[0].Clip)
	assert.Equal(t, 7, records[0].Frame)
	assert.Equal(t, "indoor_human", records[0].Scene)
	assert.Equal(t, grade.MethodGlobalOnly, records[0].Params.Method)
	assert.True(t, records[0].Usable)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	records := sampleRecords()
	require.NoError(t, WriteJSON(path, records, Summarize(records)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Summary Summary       `json:"summary"`
		Frames  []FrameRecord `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Summary.Frames)
	require.Len(t, doc.Frames, 3)
	assert.Equal(t, "outdoor_day", doc.Frames[0].Scene)
	assert.Equal(t, "decode failed", doc.Frames[2].Err)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteCSV(path, sampleRecords()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "clip", rows[0][0])
	assert.Equal(t, "-0.3000", rows[1][4])
	assert.Equal(t, "midtone_too_dark", rows[2][8])
	assert.Equal(t, "true", rows[3][10])
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, WriteText(path, Summarize(sampleRecords())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "frames:  3")
	assert.Contains(t, string(data), "method face_weighted:")
}

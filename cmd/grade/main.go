package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cine-ai/go-grade/detector"
	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/pipeline"
	"github.com/cine-ai/go-grade/profiler"
	"github.com/cine-ai/go-grade/report"
	"github.com/cine-ai/go-grade/util"
)

const (
	// DefaultOutputDir is where reports are written when -output-dir is unset.
	DefaultOutputDir = "grade_reports"
)

// supportedImageExtensions lists the frame formats the loader accepts.
var supportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

func main() {
	var (
		inputPath       string
		modelPath       string
		backend         string
		outputDir       string
		reportFormat    string
		logEncoded      bool
		sharpnessWeight float64
		hysteresis      float64
	)
	flag.StringVar(&inputPath, "input", "", "Frame directory, directory of clip directories, or single image file")
	flag.StringVar(&modelPath, "model", "", "Path to ONNX face detection model (empty = scene-rule mode)")
	flag.StringVar(&backend, "backend", "ort", "Detector backend: ort or gocv")
	flag.StringVar(&outputDir, "output-dir", DefaultOutputDir, "Output directory for reports")
	flag.StringVar(&reportFormat, "report", "json", "Report format: json, csv, txt or all")
	flag.BoolVar(&logEncoded, "log-encoded", false, "Treat input frames as log-encoded footage")
	flag.Float64Var(&sharpnessWeight, "sharpness-weight", 0.3, "Weight of sharpness in face candidate scoring")
	flag.Float64Var(&hysteresis, "hysteresis", 0.15, "Score margin required to switch primary face")
	flag.Parse()

	if inputPath == "" {
		flag.Usage()
		log.Fatal("error: -input is required")
	}

	clips, err := collectClips(inputPath)
	if err != nil {
		log.Fatal(err)
	}

	cfg := pipeline.DefaultConfig()
	cfg.LogEncoded = logEncoded
	cfg.SharpnessWeight = sharpnessWeight
	cfg.Hysteresis = hysteresis
	analyzer := pipeline.NewAnalyzer(cfg)

	var faces pipeline.FaceDetector
	if modelPath != "" {
		faces, err = newDetector(backend, modelPath)
		if err != nil {
			fmt.Printf("warning: face detector unavailable, continuing in scene-rule mode: %v\n", err)
			faces = nil
		} else {
			defer faces.Close()
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatalf("error creating output directory: %v", err)
	}

	fmt.Printf("grade: %d clip(s), log-encoded=%t, detector=%s\n",
		len(clips), logEncoded, detectorLabel(faces, backend, modelPath))

	prof := profiler.NewRuntimeProfiler(profiler.Options{})
	prof.Start()
	defer prof.Stop()

	var records []report.FrameRecord
	processed := 0
	for _, clip := range clips {
		results, err := processClip(analyzer, faces, prof, clip)
		if err != nil {
			log.Printf("clip %s: %v, skipping", clip.name, err)
			continue
		}
		processed += len(results)
		for _, r := range results {
			printResult(r)
		}
		records = append(records, report.FromResults(results)...)
	}

	if processed == 0 {
		log.Fatal("error: no frames processed")
	}

	summary := report.Summarize(records)
	if err := writeReports(outputDir, reportFormat, records, summary); err != nil {
		log.Fatalf("error writing reports: %v", err)
	}

	fmt.Printf("done: %d frames, %d usable, %d skipped (%s)\n",
		summary.Frames, summary.Usable, summary.Skipped, prof.Snapshot())
}

// clipInput is one clip to analyze: a named, ordered frame sequence.
type clipInput struct {
	name   string
	frames []util.ImageFile
}

// collectClips resolves -input into clip frame sequences. A single image
// file becomes a one-frame clip; a directory of frames becomes one clip;
// a directory of directories becomes one clip per subdirectory.
func collectClips(inputPath string) ([]clipInput, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("error: input not found: %s", inputPath)
	}

	if !info.IsDir() {
		ext := strings.ToLower(filepath.Ext(inputPath))
		if !contains(supportedImageExtensions, ext) {
			return nil, fmt.Errorf("error: unsupported input file %s, supported: %v", inputPath, supportedImageExtensions)
		}
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(inputPath), ext)
		return []clipInput{{name: name, frames: []util.ImageFile{{Path: inputPath, Data: data, Frame: 0}}}}, nil
	}

	frames, err := util.LoadDirectoryImageFiles(inputPath)
	if err != nil {
		return nil, err
	}
	if len(frames) > 0 {
		return []clipInput{{name: filepath.Base(inputPath), frames: frames}}, nil
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, err
	}
	var clips []clipInput
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(inputPath, entry.Name())
		frames, err := util.LoadDirectoryImageFiles(sub)
		if err != nil {
			log.Printf("clip %s: %v, skipping", entry.Name(), err)
			continue
		}
		if len(frames) == 0 {
			continue
		}
		clips = append(clips, clipInput{name: entry.Name(), frames: frames})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].name < clips[j].name })
	if len(clips) == 0 {
		return nil, fmt.Errorf("error: no frames found under %s", inputPath)
	}
	return clips, nil
}

// newDetector builds the requested face detection backend.
func newDetector(backend, modelPath string) (pipeline.FaceDetector, error) {
	cfg := detector.DefaultConfig()
	cfg.ModelPath = modelPath
	switch backend {
	case "ort":
		return detector.NewORTDetector(cfg)
	case "gocv":
		return detector.NewDNNDetector(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q, expected ort or gocv", backend)
	}
}

// processClip runs one session over a clip's frames in order.
func processClip(analyzer *pipeline.Analyzer, faces pipeline.FaceDetector, prof *profiler.RuntimeProfiler, clip clipInput) ([]pipeline.FrameResult, error) {
	session := pipeline.NewSession(analyzer, faces, clip.name)
	for _, file := range clip.frames {
		frame, err := images.DecodeImage(file.Data)
		if err != nil {
			log.Printf("clip %s frame %d: decode failed, skipping: %v", clip.name, file.Frame, err)
			continue
		}
		start := time.Now()
		session.Process(file.Frame, frame)
		prof.Record(time.Since(start))
	}
	results := session.Results()
	if len(results) == 0 {
		return nil, fmt.Errorf("no decodable frames")
	}
	return results, nil
}

// printResult emits one frame's correction on stdout.
func printResult(r pipeline.FrameResult) {
	p := r.Analysis.Params
	line := fmt.Sprintf("[%s #%d] method=%s exposure=%+.3fev contrast=%.2f slope=%.4f power=%.4f",
		r.Clip, r.Frame, p.Method, p.ExposureEV, p.ContrastFactor,
		r.Analysis.CDL.Slope, r.Analysis.CDL.Power)
	if r.Analysis.Scene != "" {
		line += fmt.Sprintf(" scene=%s", r.Analysis.Scene)
	}
	if p.SkipReason != "" {
		line += fmt.Sprintf(" skip=%s", p.SkipReason)
	}
	if !r.Usable {
		line += " UNUSABLE"
	}
	for _, f := range r.Flags {
		line += fmt.Sprintf(" flag=%s(%.3f>%.3f)", f.Rule, f.Value, f.Threshold)
	}
	fmt.Println(line)
}

// writeReports emits the requested report files with timestamped names.
func writeReports(outputDir, format string, records []report.FrameRecord, summary report.Summary) error {
	stamp := time.Now().Format("20060102-150405")
	want := func(f string) bool { return format == f || format == "all" }

	if want("json") {
		if err := report.WriteJSON(filepath.Join(outputDir, "grade-"+stamp+".json"), records, summary); err != nil {
			return err
		}
	}
	if want("csv") {
		if err := report.WriteCSV(filepath.Join(outputDir, "grade-"+stamp+".csv"), records); err != nil {
			return err
		}
	}
	if want("txt") {
		if err := report.WriteText(filepath.Join(outputDir, "grade-"+stamp+".txt"), summary); err != nil {
			return err
		}
	}
	return nil
}

func detectorLabel(faces pipeline.FaceDetector, backend, modelPath string) string {
	if faces == nil {
		return "none (scene rules)"
	}
	return fmt.Sprintf("%s:%s", backend, filepath.Base(modelPath))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

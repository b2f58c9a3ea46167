package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile is one frame of a clip loaded from disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryImageFiles reads the frames of a clip from a directory.
//
// File names must carry a frame number, either "frame-N.ext" or bare
// "N.ext". Non-image files and files without a parseable frame number
// are skipped. Results are sorted by frame number.
//
// Arguments:
// - dir: Directory path containing the clip's frames.
//
// Returns:
// - []ImageFile: Loaded frames in playback order.
// - error: Error if the directory or a frame cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading frame directory %s", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
		default:
			continue
		}

		frame, ok := parseFrameNumber(file.Name())
		if !ok {
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(imgPath)
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading frame %s", imgPath)
		}
		images = append(images, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frame,
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}

// parseFrameNumber extracts N from "frame-N.ext" or "N.ext".
func parseFrameNumber(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.TrimPrefix(stem, "frame-")
	n, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	return n, true
}

package images

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// DecodeImage decodes JPEG, PNG, or BMP bytes into a Frame. The supported
// formats match the extensions the directory loader accepts.
//
// Arguments:
// - data: Encoded image bytes.
//
// Returns:
// - *Frame: The decoded frame in packed RGB.
// - error: Error if decoding fails.
func DecodeImage(data []byte) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return FromImage(img), nil
}

// DecodeThumbnail decodes a host-supplied thumbnail: base64-encoded packed
// RGB, 8 bits per channel, of the stated dimensions. A size mismatch between
// the stated dimensions and the payload is tolerated by truncating to whole
// pixels, matching the lenient behavior expected at the host boundary.
func DecodeThumbnail(width, height int, b64 string) (*Frame, error) {
	if width <= 0 || height <= 0 || b64 == "" {
		return nil, errors.New("thumbnail has no pixel data")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode thumbnail payload")
	}
	expected := width * height * 3
	if len(raw) < expected {
		// Shrink to the rows actually delivered.
		rows := len(raw) / (width * 3)
		if rows == 0 {
			return nil, errors.Errorf("thumbnail payload too small: have %d bytes, want %d", len(raw), expected)
		}
		height = rows
		expected = width * height * 3
	}
	return &Frame{Data: raw[:expected], Width: width, Height: height}, nil
}

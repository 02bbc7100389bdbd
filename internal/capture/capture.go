// Package capture normalizes incoming label images into the payload format
// the identification service expects: base64-encoded JPEG with no data-URI
// scheme prefix.
//
// Clients send either a camera frame (already decoded on their side and
// re-encoded here) or a raw file upload, possibly wrapped in a
// "data:image/jpeg;base64," prefix that browsers produce. Whatever arrives,
// the output of this package is the bare base64 payload.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"
)

// jpegQuality matches the fixed capture quality used by the scanner clients.
const jpegQuality = 80

// MaxUploadBytes bounds how much image data is read from an upload.
const MaxUploadBytes = 25 << 20

// ErrNoImage indicates an empty capture: no frame and no file were provided.
var ErrNoImage = errors.New("no image provided")

// EncodeFrame renders a decoded camera frame to JPEG at the fixed capture
// quality and returns the base64 payload.
func EncodeFrame(frame image.Image) (string, error) {
	if frame == nil {
		return "", ErrNoImage
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encoding frame: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FromReader reads a full uploaded file and returns the base64 payload.
func FromReader(r io.Reader) (string, error) {
	if r == nil {
		return "", ErrNoImage
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrNoImage
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Normalize accepts a payload that may carry a data-URI scheme prefix
// ("data:image/jpeg;base64,....") and returns the bare base64 content.
// The payload must decode as base64.
func Normalize(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrNoImage
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return "", fmt.Errorf("malformed data URI: no comma separator")
		}
		payload = payload[idx+1:]
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", fmt.Errorf("payload is not valid base64: %w", err)
	}
	return payload, nil
}

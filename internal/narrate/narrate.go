// Package narrate defines the interface for text-to-speech narration of
// tasting notes.
//
// Narration backends return raw PCM16 audio; the Clip type owns the binary
// handling — sample normalization for playback engines that want floats,
// and a WAV wrap for transports that deliver the audio to web clients.
package narrate

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"time"
)

// ErrEmptyText is returned before any service call when there is nothing
// to narrate.
var ErrEmptyText = errors.New("empty narration text")

// ErrNoAudio indicates the service answered without an audio payload.
var ErrNoAudio = errors.New("no audio payload in response")

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Voice overrides the configured prebuilt voice.
	Voice string
}

// Synthesizer converts tasting notes to audio.
type Synthesizer interface {
	// Synthesize generates a narration clip from the given text. Empty
	// text is rejected locally with ErrEmptyText.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*Clip, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Clip is a playable narration: raw little-endian PCM16, mono unless
// stated otherwise, no container metadata.
type Clip struct {
	// PCM is the raw sample data, 2 bytes per sample, little-endian.
	PCM []byte

	// SampleRate in Hz (24000 for the Gemini speech models).
	SampleRate int

	// Channels is the channel count, typically 1.
	Channels int
}

// Samples decodes the PCM payload into normalized float samples in
// [-1.0, 1.0]. A trailing odd byte is ignored.
func (c *Clip) Samples() []float64 {
	n := len(c.PCM) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(c.PCM[2*i:]))
		out[i] = float64(s) / 32768.0
	}
	return out
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.PCM) / 2 / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// WAV wraps the raw PCM in a WAV container for delivery over HTTP.
func (c *Clip) WAV() []byte {
	const bytesPerSample = 2
	dataLen := len(c.PCM)
	fileLen := 36 + dataLen // 44-byte header minus the 8-byte RIFF header

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fileLen))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))            // subchunk1 size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))             // audio format (PCM)
	_ = binary.Write(buf, binary.LittleEndian, uint16(c.Channels))    // channels
	_ = binary.Write(buf, binary.LittleEndian, uint32(c.SampleRate))  // sample rate
	byteRate := c.SampleRate * c.Channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))      // byte rate
	blockAlign := c.Channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))    // block align
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8)) // bits per sample

	// data subchunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(c.PCM)

	return buf.Bytes()
}

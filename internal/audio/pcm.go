// Package audio converts raw speech payloads into playable sample buffers.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// BytesPerSample is fixed: payloads are signed 16-bit little-endian PCM.
const BytesPerSample = 2

// ErrInvalidFormat is returned when the sample rate or channel count is unusable.
var ErrInvalidFormat = errors.New("invalid pcm format")

// Buffer holds decoded audio as one float32 slice per channel.
// Every sample lies in [-1.0, 1.0).
type Buffer struct {
	SampleRate int
	Channels   [][]float32

	// TrailingBytes counts input bytes that did not form a whole frame
	// and were dropped.
	TrailingBytes int
}

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.Channels) }

// Duration returns the playback length.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Decode splits interleaved 16-bit PCM into per-channel float samples,
// each int16 scaled by 1/32768. A partial frame at the end is dropped and
// reported in TrailingBytes.
func Decode(pcm []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channels %d", ErrInvalidFormat, channels)
	}

	frameSize := BytesPerSample * channels
	frames := len(pcm) / frameSize

	buf := &Buffer{
		SampleRate:    sampleRate,
		Channels:      make([][]float32, channels),
		TrailingBytes: len(pcm) - frames*frameSize,
	}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		base := i * frameSize
		for ch := 0; ch < channels; ch++ {
			off := base + ch*BytesPerSample
			s := int16(binary.LittleEndian.Uint16(pcm[off : off+BytesPerSample]))
			buf.Channels[ch][i] = float32(s) / 32768.0
		}
	}
	return buf, nil
}

// DecodeBase64 decodes a standard base64 transport payload into raw bytes.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}

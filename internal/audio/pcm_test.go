package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"
	"time"
)

func pcmOf(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func TestDecode(t *testing.T) {
	t.Run("mono_scaling", func(t *testing.T) {
		buf, err := Decode(pcmOf(0, 16384, -32768, 32767), 24000, 1)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		want := []float32{0, 0.5, -1, 32767.0 / 32768.0}
		if buf.Frames() != len(want) {
			t.Fatalf("Frames = %d, want %d", buf.Frames(), len(want))
		}
		for i, w := range want {
			if buf.Channels[0][i] != w {
				t.Errorf("sample %d = %v, want %v", i, buf.Channels[0][i], w)
			}
		}
	})

	t.Run("stereo_deinterleave", func(t *testing.T) {
		buf, err := Decode(pcmOf(100, -100, 200, -200), 48000, 2)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if buf.NumChannels() != 2 || buf.Frames() != 2 {
			t.Fatalf("got %d channels x %d frames, want 2x2", buf.NumChannels(), buf.Frames())
		}
		if buf.Channels[0][1] != 200.0/32768.0 {
			t.Errorf("left[1] = %v", buf.Channels[0][1])
		}
		if buf.Channels[1][1] != -200.0/32768.0 {
			t.Errorf("right[1] = %v", buf.Channels[1][1])
		}
	})

	t.Run("one_second_of_speech", func(t *testing.T) {
		buf, err := Decode(make([]byte, 48000), 24000, 1)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if buf.Frames() != 24000 {
			t.Errorf("Frames = %d, want 24000", buf.Frames())
		}
		if buf.Duration() != time.Second {
			t.Errorf("Duration = %v, want 1s", buf.Duration())
		}
		for i, s := range buf.Channels[0] {
			if s != 0 {
				t.Fatalf("sample %d = %v, want 0", i, s)
			}
		}
	})

	t.Run("empty_payload", func(t *testing.T) {
		buf, err := Decode(nil, 24000, 1)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if buf.Frames() != 0 || buf.TrailingBytes != 0 {
			t.Errorf("got frames=%d trailing=%d, want 0/0", buf.Frames(), buf.TrailingBytes)
		}
	})

	t.Run("partial_frame_truncated", func(t *testing.T) {
		data := append(pcmOf(1000, 2000, 3000), 0x7f)
		buf, err := Decode(data, 24000, 2)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if buf.Frames() != 1 {
			t.Errorf("Frames = %d, want 1", buf.Frames())
		}
		if buf.TrailingBytes != 3 {
			t.Errorf("TrailingBytes = %d, want 3", buf.TrailingBytes)
		}
	})

	t.Run("invalid_format", func(t *testing.T) {
		for _, tc := range []struct{ rate, ch int }{{0, 1}, {24000, 0}, {-1, 1}, {24000, -2}} {
			if _, err := Decode(pcmOf(1), tc.rate, tc.ch); !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Decode(rate=%d, ch=%d) err = %v, want ErrInvalidFormat", tc.rate, tc.ch, err)
			}
		}
	})
}

func TestDecode_RandomPayloads(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		channels := 1 + rng.Intn(4)
		data := make([]byte, rng.Intn(4096))
		rng.Read(data)

		buf, err := Decode(data, 24000, channels)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		wantFrames := (len(data) / 2) / channels
		if buf.Frames() != wantFrames {
			t.Fatalf("len=%d ch=%d: Frames = %d, want %d", len(data), channels, buf.Frames(), wantFrames)
		}
		for ch, samples := range buf.Channels {
			if len(samples) != wantFrames {
				t.Fatalf("channel %d has %d samples, want %d", ch, len(samples), wantFrames)
			}
			for _, s := range samples {
				if s < -1.0 || s >= 1.0 {
					t.Fatalf("sample %v out of [-1, 1)", s)
				}
			}
		}
	}
}

func TestDecodeBase64(t *testing.T) {
	raw := pcmOf(1, 2, 3)
	got, err := DecodeBase64(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("round trip mismatch")
	}

	if _, err := DecodeBase64("not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

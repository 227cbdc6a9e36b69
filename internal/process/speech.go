package process

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/writemyvoice/wmv-engine/internal/audio"
	"github.com/writemyvoice/wmv-engine/internal/metrics"
)

var errEmptyAudio = errors.New("response contained no audio data")

// Speak synthesizes text once, without retry, and decodes the PCM.
func (p *Processor) Speak(ctx context.Context, text string) (*Speech, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: nothing to speak", ErrInvalidRequest)
	}

	pcm, err := p.backend.SynthesizeSpeech(ctx, text)
	if err == nil && len(pcm) == 0 {
		err = errEmptyAudio
	}
	if err != nil {
		metrics.SpeechRequestsTotal.WithLabelValues("error").Inc()
		return nil, &RemoteServiceError{Op: "speech", Err: err}
	}

	buf, err := audio.Decode(pcm, p.sampleRate, SpeechChannels)
	if err != nil {
		metrics.SpeechRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if buf.TrailingBytes > 0 {
		p.log.Warn().
			Int("trailing_bytes", buf.TrailingBytes).
			Int("payload_bytes", len(pcm)).
			Msg("speech payload not frame aligned, tail dropped")
		pcm = pcm[:len(pcm)-buf.TrailingBytes]
	}

	metrics.SpeechRequestsTotal.WithLabelValues("ok").Inc()
	return &Speech{PCM: pcm, Buffer: buf}, nil
}

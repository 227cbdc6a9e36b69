package process

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/writemyvoice/wmv-engine/internal/metrics"
)

var errEmptyImage = errors.New("response contained no image data")

// Storyboard renders one frame per prompt concurrently and waits for all of
// them. The returned slice is index-aligned with prompts; a frame that
// failed twice is "".
func (p *Processor) Storyboard(ctx context.Context, prompts []string, tone Tone) []string {
	urls := make([]string, len(prompts))
	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			urls[i] = p.frame(ctx, i, prompt, tone, false)
		}()
	}
	wg.Wait()
	return urls
}

// frame never fails: the first failure retries once with the Neutral tone,
// the second yields "".
func (p *Processor) frame(ctx context.Context, slot int, prompt string, tone Tone, retry bool) string {
	img, err := p.renderFrame(ctx, prompt, tone)
	if err != nil {
		p.log.Warn().Err(err).
			Int("slot", slot).
			Str("tone", string(tone)).
			Bool("retry", retry).
			Msg("storyboard frame failed")
		if retry {
			metrics.StoryboardFramesTotal.WithLabelValues("failed").Inc()
			return ""
		}
		return p.frame(ctx, slot, prompt, ToneNeutral, true)
	}

	if retry {
		metrics.StoryboardFramesTotal.WithLabelValues("retried_ok").Inc()
	} else {
		metrics.StoryboardFramesTotal.WithLabelValues("ok").Inc()
	}
	return dataURL(img)
}

func (p *Processor) renderFrame(ctx context.Context, prompt string, tone Tone) (img *Image, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			img, err = nil, fmt.Errorf("image backend panic: %v", rv)
		}
	}()

	img, err = p.backend.GenerateImage(ctx, ImageRequest{
		Prompt:      framePrompt(prompt, tone),
		AspectRatio: FrameAspectRatio,
	})
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, errEmptyImage
	}
	return img, nil
}

func dataURL(img *Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

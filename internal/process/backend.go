package process

import "context"

// Tier selects the model class used for structured generation.
type Tier int

const (
	TierFlash Tier = iota
	TierPro
)

func (t Tier) String() string {
	if t == TierPro {
		return "pro"
	}
	return "flash"
}

// StructuredRequest is one schema-constrained generation call.
type StructuredRequest struct {
	Tier              Tier
	SystemInstruction string

	// Exactly one of Text or Data is set.
	Text     string
	Data     []byte
	MIMEType string

	Instruction string
}

// ImageRequest asks for a single still frame.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
}

// Image is raw encoded image bytes.
type Image struct {
	Data     []byte
	MIMEType string
}

// Backend is the generative service the processor talks to.
type Backend interface {
	// GenerateStructured returns the raw JSON document produced for req.
	GenerateStructured(ctx context.Context, req StructuredRequest) ([]byte, error)

	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)

	// SynthesizeSpeech returns mono 16-bit little-endian PCM.
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

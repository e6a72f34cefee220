package guard

import "context"

// AIClient produces the raw recipe text for an image and prompt.
type AIClient interface {
	Generate(ctx context.Context, image []byte, prompt string) (string, error)
}

// AIClientFunc adapts a function to AIClient.
type AIClientFunc func(ctx context.Context, image []byte, prompt string) (string, error)

// Generate calls f.
func (f AIClientFunc) Generate(ctx context.Context, image []byte, prompt string) (string, error) {
	return f(ctx, image, prompt)
}

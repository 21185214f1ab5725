package port

import "context"

// TextModel abstracts a generative text model. The returned text is free-form
// prose with no structural guarantees; callers apply best-effort extraction.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

package port

import "context"

type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

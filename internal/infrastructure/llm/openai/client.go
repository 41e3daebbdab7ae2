package openai

import (
	"context"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/infrastructure/remote"
)

const chatCompletionsPath = "chat/completions"

// Client posts analysis requests to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	caller *remote.Caller
}

func New(caller *remote.Caller) *Client {
	return &Client{caller: caller}
}

func (c *Client) Analyze(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	return remote.Post[domain.ModelResponse](ctx, c.caller, chatCompletionsPath, req)
}

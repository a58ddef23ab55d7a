package analyzer

import (
	"context"
	"errors"
	"net/http"
)

type hostedBackend struct {
	url  string
	http *http.Client
}

func (b *hostedBackend) name() string { return "hosted" }

func (b *hostedBackend) complete(ctx context.Context, messages []message) (string, error) {
	var out struct {
		Completion string `json:"completion"`
	}
	body := map[string]any{"messages": messages}
	if err := postJSON(ctx, b.http, b.url, body, nil, &out); err != nil {
		return "", err
	}
	return out.Completion, nil
}

type openAIBackend struct {
	url   string
	model string
	key   string
	http  *http.Client
}

func (b *openAIBackend) name() string { return "openai" }

func (b *openAIBackend) complete(ctx context.Context, messages []message) (string, error) {
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	body := map[string]any{"model": b.model, "messages": messages}
	headers := map[string]string{"Authorization": "Bearer " + b.key}
	if err := postJSON(ctx, b.http, b.url, body, headers, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

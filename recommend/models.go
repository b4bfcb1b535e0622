package recommend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const defaultTimeout = 60 * time.Second

// Ollama asks a local Ollama server through its chat API
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(httpClient *http.Client, host, model string) (*Ollama, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	base, err := url.Parse(strings.TrimRight(host, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "recommend/ollama: parsing host %q", host)
	}
	return &Ollama{client: api.NewClient(base, httpClient), model: model}, nil
}

func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
	}
	var answer strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		answer.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "recommend/ollama")
	}
	return answer.String(), nil
}

// Gemini calls generateContent through the Gen AI SDK
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini API client. An empty baseURL means the public
// endpoint.
func NewGemini(ctx context.Context, httpClient *http.Client, baseURL, apiKey, model string) (*Gemini, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, errors.Wrap(err, "recommend/gemini: creating client")
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", errors.Wrap(err, "recommend/gemini")
	}
	return strings.TrimSpace(resp.Text()), nil
}

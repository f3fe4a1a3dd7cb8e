package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/alirezadp10/ezapply/internal/model"
)

// EmbeddingClient implements model.Embedder against a hosted inference
// endpoint that accepts {"inputs": [...]} and returns {"embeddings": [[...]]}.
type EmbeddingClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewEmbeddingClient creates an embedder targeting the given inference URL.
func NewEmbeddingClient(url, apiKey string, httpClient *http.Client) *EmbeddingClient {
	return &EmbeddingClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type embeddingRequest struct {
	Inputs []string `json:"inputs"`
}

type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the vector for a single text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Inputs: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("embedding endpoint returned %s", string(respBytes)),
		}
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding endpoint returned no vectors")
	}
	return parsed.Embeddings[0], nil
}

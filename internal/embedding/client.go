package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlee/socialnet-backend/config"
)

// Client handles communication with the embedding microservice
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an embedding service client with validation and defaults
func NewClient(cfg *config.EmbeddingConfig) (*Client, error) {
	baseURL := "http://localhost:8001"
	if cfg != nil && cfg.ServiceURL != "" {
		baseURL = cfg.ServiceURL
	}

	timeout := 30 * time.Second
	if cfg != nil && cfg.HTTPTimeout != "" {
		duration, err := time.ParseDuration(cfg.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding HTTP timeout '%s': %v", cfg.HTTPTimeout, err)
		}
		timeout = duration
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// EmbedRequest represents a single text embedding request
type EmbedRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// EmbedResponse represents the embedding response
type EmbedResponse struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	EmbeddingModel string `json:"embedding_model"`
	ModelLoaded    bool   `json:"embedding_model_loaded"`
}

// Embed generates an embedding for a single text using the given model
func (c *Client) Embed(text, model string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text provided")
	}

	reqBody := EmbedRequest{Text: text, Model: model}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/embed", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return embedResp.Embedding, nil
}

// HealthCheck checks if the embedding service is healthy
func (c *Client) HealthCheck() (*HealthResponse, error) {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return nil, fmt.Errorf("failed to make health check request: %w", err)
	}
	defer resp.Body.Close()

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}

	return &healthResp, nil
}

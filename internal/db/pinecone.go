package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PineconeClient wraps HTTP calls to the Pinecone data-plane API.
// The index is owned elsewhere; this client only queries and inspects it.
type PineconeClient struct {
	indexHost  string
	apiKey     string
	namespace  string
	httpClient *http.Client
}

// PineconeConfig holds configuration for the Pinecone connection
type PineconeConfig struct {
	IndexHost string // full index host, e.g. https://my-index-abc123.svc.us-east-1.pinecone.io
	APIKey    string
	Namespace string // optional; empty means the default namespace
	Timeout   time.Duration
}

// QueryRequest is the Pinecone /query payload
type QueryRequest struct {
	Vector          []float32              `json:"vector"`
	TopK            int                    `json:"topK"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
	IncludeMetadata bool                   `json:"includeMetadata"`
	Namespace       string                 `json:"namespace,omitempty"`
}

// QueryMatch is a single scored match returned by /query
type QueryMatch struct {
	ID       string                 `json:"id"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryResponse is the Pinecone /query response
type QueryResponse struct {
	Matches   []QueryMatch `json:"matches"`
	Namespace string       `json:"namespace"`
}

// IndexStats is the /describe_index_stats response
type IndexStats struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// NewPineconeClient creates a new Pinecone data-plane client
func NewPineconeClient(config PineconeConfig) *PineconeClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	host := strings.TrimSuffix(config.IndexHost, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &PineconeClient{
		indexHost: host,
		apiKey:    config.APIKey,
		namespace: config.Namespace,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Query searches the index for the nearest vectors to the query vector.
// An all-zero vector is a valid input: ranking then carries no semantic
// signal and results are effectively driven by the metadata filter.
func (c *PineconeClient) Query(ctx context.Context, vector []float32, topK int, filter map[string]interface{}) (*QueryResponse, error) {
	payload := QueryRequest{
		Vector:          vector,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
		Namespace:       c.namespace,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/query", c.indexHost)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("query failed (status %d): %s", resp.StatusCode, string(body))
	}

	var queryResp QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &queryResp, nil
}

// DescribeIndexStats returns index-level statistics
func (c *PineconeClient) DescribeIndexStats(ctx context.Context) (*IndexStats, error) {
	url := fmt.Sprintf("%s/describe_index_stats", c.indexHost)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("describe index stats failed (status %d): %s", resp.StatusCode, string(body))
	}

	var stats IndexStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &stats, nil
}

// Heartbeat checks that the index is reachable
func (c *PineconeClient) Heartbeat(ctx context.Context) error {
	_, err := c.DescribeIndexStats(ctx)
	if err != nil {
		return fmt.Errorf("pinecone heartbeat failed: %w", err)
	}
	return nil
}

// Close closes the HTTP client connections
func (c *PineconeClient) Close() {
	c.httpClient.CloseIdleConnections()
}

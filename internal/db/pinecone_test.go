package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewPineconeClient tests client initialization
func TestNewPineconeClient(t *testing.T) {
	tests := []struct {
		name     string
		config   PineconeConfig
		wantHost string
	}{
		{
			name: "bare host gets https scheme",
			config: PineconeConfig{
				IndexHost: "my-index-abc123.svc.us-east-1.pinecone.io",
				APIKey:    "test-key",
			},
			wantHost: "https://my-index-abc123.svc.us-east-1.pinecone.io",
		},
		{
			name: "explicit scheme and trailing slash",
			config: PineconeConfig{
				IndexHost: "http://localhost:8100/",
				APIKey:    "test-key",
				Timeout:   5 * time.Second,
			},
			wantHost: "http://localhost:8100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewPineconeClient(tt.config)

			if client == nil {
				t.Fatal("Expected non-nil client")
			}
			if client.indexHost != tt.wantHost {
				t.Errorf("Expected host %q, got %q", tt.wantHost, client.indexHost)
			}
			if client.httpClient == nil {
				t.Error("Expected non-nil HTTP client")
			}
			if client.httpClient.Timeout == 0 {
				t.Error("Expected a default timeout to be applied")
			}
		})
	}
}

// TestPineconeClient_Query tests the query payload and response decoding
func TestPineconeClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("Expected path /query, got %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "test-key" {
			t.Errorf("Expected Api-Key header, got %q", r.Header.Get("Api-Key"))
		}

		var payload QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if payload.TopK != 5 {
			t.Errorf("Expected topK 5, got %d", payload.TopK)
		}
		if !payload.IncludeMetadata {
			t.Error("Expected includeMetadata to be set")
		}
		if payload.Namespace != "seat-range" {
			t.Errorf("Expected namespace seat-range, got %q", payload.Namespace)
		}
		price, ok := payload.Filter["price"].(map[string]interface{})
		if !ok || price["$lte"] != 30000.0 {
			t.Errorf("Expected price filter with $lte 30000, got %v", payload.Filter)
		}

		json.NewEncoder(w).Encode(QueryResponse{
			Matches: []QueryMatch{
				{
					ID:    "seat-leon",
					Score: 0.91,
					Metadata: map[string]interface{}{
						"content": "SEAT Leon: compact, from 21,000 EUR",
						"price":   21000.0,
					},
				},
			},
			Namespace: "seat-range",
		})
	}))
	defer server.Close()

	client := NewPineconeClient(PineconeConfig{
		IndexHost: server.URL,
		APIKey:    "test-key",
		Namespace: "seat-range",
	})
	defer client.Close()

	vector := make([]float32, 1536)
	filter := map[string]interface{}{
		"price": map[string]interface{}{"$lte": 30000.0},
	}

	resp, err := client.Query(context.Background(), vector, 5, filter)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(resp.Matches))
	}
	if resp.Matches[0].ID != "seat-leon" {
		t.Errorf("Expected match seat-leon, got %s", resp.Matches[0].ID)
	}
	if resp.Matches[0].Metadata["content"] != "SEAT Leon: compact, from 21,000 EUR" {
		t.Errorf("Unexpected content metadata: %v", resp.Matches[0].Metadata["content"])
	}
}

// TestPineconeClient_QueryError tests non-200 handling
func TestPineconeClient_QueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewPineconeClient(PineconeConfig{
		IndexHost: server.URL,
		APIKey:    "wrong-key",
	})
	defer client.Close()

	_, err := client.Query(context.Background(), make([]float32, 1536), 5, nil)
	if err == nil {
		t.Fatal("Expected an error for status 401")
	}
}

// TestPineconeClient_Heartbeat tests the stats-based reachability check
func TestPineconeClient_Heartbeat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/describe_index_stats" {
			t.Errorf("Expected path /describe_index_stats, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(IndexStats{Dimension: 1536, TotalVectorCount: 42})
	}))
	defer server.Close()

	client := NewPineconeClient(PineconeConfig{
		IndexHost: server.URL,
		APIKey:    "test-key",
	})
	defer client.Close()

	if err := client.Heartbeat(context.Background()); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	stats, err := client.DescribeIndexStats(context.Background())
	if err != nil {
		t.Fatalf("DescribeIndexStats failed: %v", err)
	}
	if stats.Dimension != 1536 {
		t.Errorf("Expected dimension 1536, got %d", stats.Dimension)
	}
}

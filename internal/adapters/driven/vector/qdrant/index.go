// Package qdrant implements the vector index port over Qdrant's REST
// API. Collections use cosine distance; point IDs are UUIDv5 values
// derived from the logical entry key, so upserts for the same key
// always land on the same point.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tbr-cli/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// payloadKey is the payload field holding the logical entry key.
const payloadKey = "key"

// Config holds Qdrant connection settings.
type Config struct {
	// URL is the Qdrant base URL, e.g. http://localhost:6333.
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name. Defaults to "books".
	Collection string

	// Dimensions is the embedding dimensionality, used when the
	// collection has to be created.
	Dimensions int

	// Timeout bounds each HTTP request. Defaults to 15 seconds.
	Timeout time.Duration
}

// Index is a REST client to one Qdrant collection.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// NewIndex creates the index and ensures the collection exists.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		cfg.Collection = "books"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("invalid dimensions %d", cfg.Dimensions)
	}

	idx := &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
	if err := idx.ensureCollection(cfg.Dimensions); err != nil {
		return nil, fmt.Errorf("ensuring collection: %w", err)
	}
	return idx, nil
}

// ensureCollection creates the collection if missing. Qdrant treats a
// PUT for an existing collection with the same schema as success.
func (x *Index) ensureCollection(dimensions int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	return x.putJSON(context.Background(),
		fmt.Sprintf("%s/collections/%s", x.url, x.collection), body)
}

// Upsert stores or replaces the entry for key.
func (x *Index) Upsert(ctx context.Context, key string, embedding []float32, text string, metadata map[string]string) error {
	payload := map[string]any{
		payloadKey: key,
		"text":     text,
	}
	for k, v := range metadata {
		payload[k] = v
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(key),
			"vector":  embedding,
			"payload": payload,
		}},
	}
	err := x.putJSON(ctx,
		fmt.Sprintf("%s/collections/%s/points?wait=true", x.url, x.collection), body)
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}

// Query returns up to n entries ordered by ascending cosine distance.
func (x *Index) Query(ctx context.Context, embedding []float32, n int) ([]driven.VectorHit, error) {
	if n <= 0 {
		n = 10
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        n,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := x.postJSON(ctx,
		fmt.Sprintf("%s/collections/%s/points/search", x.url, x.collection), req, &resp)
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := driven.VectorHit{
			Metadata: make(map[string]string, len(r.Payload)),
			// Qdrant reports cosine similarity; the port contract is
			// distance.
			Distance: 1 - r.Score,
		}
		for k, v := range r.Payload {
			str, ok := v.(string)
			if !ok {
				continue
			}
			if k == payloadKey {
				hit.Key = str
				continue
			}
			if k == "text" {
				continue
			}
			hit.Metadata[k] = str
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Delete removes the entry for key. Deleting an absent key succeeds.
func (x *Index) Delete(ctx context.Context, key string) error {
	body := map[string]any{
		"points": []string{pointID(key)},
	}
	err := x.postJSON(ctx,
		fmt.Sprintf("%s/collections/%s/points/delete?wait=true", x.url, x.collection), body, nil)
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// qdrantNamespace scopes the UUIDv5 point IDs derived from entry keys.
var qdrantNamespace = uuid.MustParse("8a9e94b2-30c4-4f3e-9ad6-5e2f64d1a0b7")

// pointID derives a stable Qdrant point ID from a logical key.
func pointID(key string) string {
	return uuid.NewSHA1(qdrantNamespace, []byte(key)).String()
}

func (x *Index) putJSON(ctx context.Context, url string, body any) error {
	return x.do(ctx, http.MethodPut, url, body, nil)
}

func (x *Index) postJSON(ctx context.Context, url string, body any, out any) error {
	return x.do(ctx, http.MethodPost, url, body, out)
}

func (x *Index) do(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

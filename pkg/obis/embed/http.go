package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// HTTP calls an OpenAI-compatible /embeddings endpoint.
type HTTP struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ModelID implements Embedder.
func (c *HTTP) ModelID() string { return c.Model }

// Embed implements Embedder.
func (c *HTTP) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.BaseURL == "" || c.Model == "" {
		return nil, errors.Wrap(internalerr.ErrInvalidConfig, "embeddings: base URL and model required")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody, err := json.Marshal(embeddingRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(c.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, internalerr.Upstream(err, "embeddings")
	}
	defer resp.Body.Close()

	var payload embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, internalerr.Upstream(errors.Wrapf(err, "decode (status %d)", resp.StatusCode), "embeddings")
	}
	if payload.Error != nil {
		return nil, internalerr.Upstream(errors.Newf("%s", payload.Error.Message), "embeddings")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, internalerr.Upstream(errors.Newf("status %d", resp.StatusCode), "embeddings")
	}
	if len(payload.Data) != len(texts) {
		return nil, internalerr.Upstream(errors.Newf("got %d vectors for %d inputs", len(payload.Data), len(texts)), "embeddings")
	}

	sort.Slice(payload.Data, func(i, j int) bool { return payload.Data[i].Index < payload.Data[j].Index })
	out := make([][]float32, len(payload.Data))
	for i, d := range payload.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (c *HTTP) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

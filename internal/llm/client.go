// Package llm extracts OBIS query parameters from free text with an
// OpenAI-compatible chat completion endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/config"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

const service = "LLM"

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Prompts *config.Prompts

	HTTPClient *http.Client
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract asks the model for the parameters of endpoint e that answer request.
func (c *Client) Extract(ctx context.Context, e *params.Endpoint, request string) (*params.Extraction, error) {
	if e == nil {
		return nil, errors.Wrap(internalerr.ErrInvalidInput, "llm: endpoint required")
	}
	system := BuildSystemPrompt(c.prompts(), e)
	content, err := c.complete(ctx, system, request, true)
	if err != nil {
		return nil, err
	}

	var out params.Extraction
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		return nil, internalerr.Upstream(errors.Wrapf(err, "decode extraction %q", truncate(content, 120)), service)
	}
	if out.Params == nil {
		out.Params = params.NewMap()
	}
	return &out, nil
}

// Chat sends one system and one user message and returns the reply.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, false)
}

func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", errors.Wrap(internalerr.ErrInvalidConfig, "llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages, jsonMode)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", internalerr.Upstream(errors.New("llm: empty response"), service)
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage, jsonMode bool) (*chatResponse, error) {
	body := chatRequest{Model: c.Model, Messages: messages}
	if jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, internalerr.Upstream(err, service)
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, internalerr.Upstream(errors.Wrapf(err, "decode (status %d)", resp.StatusCode), service)
	}
	if payload.Error != nil {
		return nil, internalerr.Upstream(errors.Newf("llm error: %s", payload.Error.Message), service)
	}
	return &payload, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (c *Client) prompts() *config.Prompts {
	if c.Prompts != nil {
		return c.Prompts
	}
	return config.DefaultPrompts()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// BuildSystemPrompt renders the instructions, the endpoint's parameter list
// and its examples.
func BuildSystemPrompt(p *config.Prompts, e *params.Endpoint) string {
	var buf bytes.Buffer
	buf.WriteString(p.System)
	fmt.Fprintf(&buf, "\n\nEndpoint: %s\n%s\n\nParameters:\n", e.Name, e.Description)
	for _, f := range e.Fields {
		fmt.Fprintf(&buf, "- %s (%s): %s\n", f.Name, f.Kind, f.Description)
	}

	ep := p.For(e.Name)
	if ep.Guidance != "" {
		fmt.Fprintf(&buf, "\n%s\n", ep.Guidance)
	}
	if len(ep.Examples) > 0 {
		buf.WriteString("\nExamples:\n")
		for _, ex := range ep.Examples {
			m, err := ex.ParamMap()
			if err != nil {
				continue
			}
			reply := map[string]any{"params": m}
			if ex.Clarification {
				reply["clarification_needed"] = true
				reply["unresolved_params"] = ex.Unresolved
			}
			encoded, _ := json.Marshal(reply)
			fmt.Fprintf(&buf, "Request: %s\nResponse: %s\n", ex.Request, encoded)
		}
	}
	return buf.String()
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

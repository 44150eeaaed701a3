package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client is a thin HTTP client for the content-generation service.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. A zero timeout
// uses the default.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// Generate requests one guide via POST /v1/guides.
func (c *Client) Generate(ctx context.Context, req Request) (GeneratedGuide, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	body, err := json.Marshal(req)
	if err != nil {
		return GeneratedGuide{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/guides", bytes.NewReader(body))
	if err != nil {
		return GeneratedGuide{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return GeneratedGuide{}, fmt.Errorf("generating guide %q: %w", req.GuideID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return GeneratedGuide{}, fmt.Errorf("generating guide %q: HTTP %d: %s", req.GuideID, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var doc GeneratedGuide
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return GeneratedGuide{}, fmt.Errorf("decoding guide %q: %w", req.GuideID, err)
	}
	if doc.GuideID == "" {
		doc.GuideID = req.GuideID
	}
	return doc, nil
}

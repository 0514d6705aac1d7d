// Package analysis sends sketches to the remote analysis service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultEndpoint = "http://localhost:8000/save-image"
	DefaultPrompt   = "Analyze this mathematical expression and provide a clear solution"

	// NoResponseText is used when a successful reply carries no known field.
	NoResponseText = "No response received"
	// FailedText is used when an error reply carries no message.
	FailedText = "Failed to process image"
)

var (
	resultKeys = []string{"result", "analysis", "response"}
	errorKeys  = []string{"detail", "message"}
)

// Request is the JSON body posted to the service.
type Request struct {
	ID     string `json:"-"`
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// APIError is returned when the service answered but reported a failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analysis service: %d: %s", e.Status, e.Message)
}

// Client posts sketches to one endpoint. No retries are made.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a client for endpoint. A zero timeout waits indefinitely.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// Analyze posts req and returns the result text. A reply with a non-2xx status
// yields an *APIError; anything that keeps the reply from being read and
// decoded is returned as a plain error.
func (c *Client) Analyze(ctx context.Context, req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", req.ID)

	log.Printf("[SUBMIT] %s: posting %d bytes to %s", req.ID, len(body), c.Endpoint)
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	// Valid JSON that is not an object carries no known keys.
	payload, _ := decoded.(map[string]any)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := firstString(payload, errorKeys, FailedText)
		log.Printf("[SUBMIT] %s: service reported %d: %s", req.ID, resp.StatusCode, msg)
		return "", &APIError{Status: resp.StatusCode, Message: msg}
	}
	log.Printf("[SUBMIT] %s: answered", req.ID)
	return firstString(payload, resultKeys, NoResponseText), nil
}

// firstString returns the first key holding a non-empty string.
func firstString(payload map[string]any, keys []string, fallback string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quizforge/quizforge-backend/internal/game"
)

// Generator produces MCQ candidates from raw text. The HTTP handlers depend
// on this interface so tests can swap in a fake.
type Generator interface {
	Generate(ctx context.Context, text string) ([]game.MCQ, error)
}

// Client calls the external text-to-MCQ service: POST {"text": ...} and a
// {"mcqs": [...]} response.
type Client struct {
	HTTP *http.Client
	URL  string
}

func NewClient(url string) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 30 * time.Second},
		URL:  url,
	}
}

func (c *Client) Generate(ctx context.Context, text string) ([]game.MCQ, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ai service: status %d: %s", resp.StatusCode, snippet)
	}

	var out struct {
		MCQs []game.MCQ `json:"mcqs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ai service: decode: %w", err)
	}
	return out.MCQs, nil
}

// Package client calls a running help desk over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"help-desk/domain"
	"help-desk/observability"
)

const DefaultTimeout = 90 * time.Second

// APIError is a non 2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("help desk answered %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type askBody struct {
	Question string              `json:"question"`
	Context  domain.QueryContext `json:"context"`
}

// Ask posts one question on behalf of the token's session.
func (c *Client) Ask(ctx context.Context, question string, qc domain.QueryContext) (domain.EdResponse, error) {
	payload, err := json.Marshal(askBody{Question: question, Context: qc})
	if err != nil {
		return domain.EdResponse{}, err
	}
	var resp domain.EdResponse
	err = c.do(ctx, http.MethodPost, "/v1/ask", bytes.NewReader(payload), &resp)
	return resp, err
}

// Health reads the latest process snapshot. It needs no token.
func (c *Client) Health(ctx context.Context) (observability.HealthStats, error) {
	var stats observability.HealthStats
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

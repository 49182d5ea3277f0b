// Package client is a small REST client for the learning-style prediction API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Prediction is the success body of POST /predict.
type Prediction struct {
	Status        string             `json:"status"`
	GayaBelajar   string             `json:"gaya_belajar"`
	Deskripsi     string             `json:"deskripsi"`
	Saran         []string           `json:"saran"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

type Health struct {
	Status        string     `json:"status"`
	ModelLoaded   bool       `json:"model_loaded"`
	ModelKind     string     `json:"model_kind,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Predict posts a feature payload. Values are sent as given so callers can
// exercise the server's validation with strings or missing fields.
func (c *Client) Predict(ctx context.Context, payload map[string]any) (*Prediction, error) {
	result := &Prediction{}
	errResp := &errorBody{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(result).
		SetError(errResp).
		Post(c.base + "/predict")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		msg := errResp.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return result, nil
}

// Health fetches /health. A degraded server answers 503 with a valid body,
// which is returned together with an APIError.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(c.base + "/health")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	h := &Health{}
	if err := json.Unmarshal(resp.Body(), h); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: resp.String()}
	}
	if resp.StatusCode() != http.StatusOK {
		msg := h.LastError
		if msg == "" {
			msg = h.Status
		}
		return h, &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return h, nil
}

// Ping calls the liveness route and returns its text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(c.base + "/")
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: resp.String()}
	}
	return resp.String(), nil
}

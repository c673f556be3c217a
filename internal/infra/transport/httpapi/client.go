package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

// DefaultEndpoint is where the risk service listens in local development.
const DefaultEndpoint = "http://127.0.0.1:5000/predict-risk"

const maxResponseBytes = 4 << 20

// Client sends project text to the remote risk service. One request per
// Send, no retry.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{Endpoint: endpoint, HTTP: &http.Client{Timeout: timeout}}
}

type request struct {
	Input string `json:"input"`
}

func (c *Client) Send(ctx context.Context, text string) (domain.Payload, error) {
	body, err := json.Marshal(request{Input: text})
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportMalformed, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportUnreachable, Message: fmt.Sprintf("invalid endpoint %s", c.Endpoint), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &domain.TransportError{
			Kind:    domain.TransportUnreachable,
			Message: fmt.Sprintf("cannot connect to server at %s", c.Endpoint),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportUnreachable, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}

	var p domain.Payload
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		if err == nil {
			err = errors.New("response is not a JSON object")
		}
		return nil, &domain.TransportError{Kind: domain.TransportMalformed, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return p, nil
}

// statusError prefers the server's own "error" field over a generic message.
func statusError(code int, raw []byte) error {
	msg := fmt.Sprintf("http error status: %d", code)
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	te := &domain.TransportError{Kind: domain.TransportStatus, StatusCode: code, Message: msg}
	if code == http.StatusTooManyRequests {
		te.Err = domain.ErrQuotaExceeded
	}
	return te
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

package static

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
	"github.com/bryanwahyu/riskscope/internal/infra/ai/prompt"
)

// Transport answers every submission with the same JSON payload.
type Transport struct {
	raw []byte
}

// New returns a Transport replying with raw, which must be a JSON object.
func New(raw []byte) (*Transport, error) {
	var p domain.Payload
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return nil, fmt.Errorf("static payload must be a JSON object")
	}
	return &Transport{raw: raw}, nil
}

// Sample replies with prompt.SampleAssessment.
func Sample() *Transport {
	b, err := prompt.SampleAssessment().JSON()
	if err != nil {
		panic(err)
	}
	return &Transport{raw: b}
}

// Send decodes a fresh copy per call so callers can't mutate shared state.
func (t *Transport) Send(ctx context.Context, text string) (domain.Payload, error) {
	var p domain.Payload
	if err := json.Unmarshal(t.raw, &p); err != nil {
		return nil, &domain.TransportError{Kind: domain.TransportMalformed, Message: "malformed response", Err: err}
	}
	return p, nil
}

package analysis

import "context"

// Payload is one decoded JSON object returned by the risk service.
type Payload map[string]any

// Transport port (interface untuk kirim teks ke risk service)
// Send returns the decoded JSON object or a *TransportError.
type Transport interface {
	Send(ctx context.Context, text string) (Payload, error)
}

// Renderer port (presentation). One-way: nothing flows back to the session.
type Renderer interface {
	Render(result AnalysisResult)
}

// KeyValueStore port (interface untuk persistence history)
// Get returns (nil, nil) when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

func completion(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return b
}

func TestParseContent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		key     string
		want    any
	}{
		{"plain json", `{"risk_level":"High"}`, "risk_level", "High"},
		{"fenced json", "```json\n{\"risk_level\":\"Low\"}\n```", "risk_level", "Low"},
		{"free text", "This project looks risky.", "response", "This project looks risky."},
		{"json array is narrative", `[1,2]`, "response", "[1,2]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ParseContent(tc.content)
			if p[tc.key] != tc.want {
				t.Fatalf("payload = %v", p)
			}
		})
	}
}

func TestSendStructured(t *testing.T) {
	t.Parallel()

	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 2 {
			gotUser = req.Messages[1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completion(`{"risk_level":"High","success_probability":30,"risk_categories":{"technical":80}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL+"/v1", "")
	p, err := c.Send(context.Background(), "Marketplace for used farm equipment")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(gotUser, "Marketplace for used farm equipment") {
		t.Fatalf("user prompt = %q", gotUser)
	}
	out := domain.Normalize(p)
	if out.Shape != domain.ShapeStructured || out.Result.RiskLevel != "High" {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestSendRateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit exceeded","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("test-key", srv.URL+"/v1", "gpt-4o-mini").Send(context.Background(), "Marketplace for used farm equipment")
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Kind != domain.TransportStatus {
		t.Fatalf("expected status transport error, got %v", err)
	}
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded in chain, got %v", err)
	}
}

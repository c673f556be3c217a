package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/riskscope/internal/application/analysis"
	"github.com/bryanwahyu/riskscope/internal/application/history"
	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
	"github.com/bryanwahyu/riskscope/internal/middleware"
	"github.com/bryanwahyu/riskscope/internal/presentation"
)

// Options carries the cross-cutting settings of the HTTP shell.
type Options struct {
	AllowedOrigins []string
	APIKeys        map[string]string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	session *appanalysis.Session
	history *history.Store
}

// badRequest marks errors caused by a malformed request.
type badRequest struct{ error }

func NewRouter(session *appanalysis.Session, opts Options) http.Handler {
	r := &Router{session: session, history: session.History}
	mux := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		if opts.RateLimiter != nil {
			rt.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
		}
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/history", r.wrap(r.handleHistoryList))
		rt.Delete("/history", r.wrap(r.handleHistoryClear))
		rt.Get("/history/{id}", r.wrap(r.handleHistoryGet))
		rt.Delete("/history/{id}", r.wrap(r.handleHistoryDelete))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				log.Printf("request failed path=%s status=%d err=%v", req.URL.Path, status, err)
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
		}
	}
}

func statusFor(err error) int {
	var br badRequest
	var svcErr *domain.ServiceError
	var te *domain.TransportError
	switch {
	case errors.As(err, &br), domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.As(err, &svcErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.As(err, &te):
		if te.Kind == domain.TransportUnreachable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type analysisResponse struct {
	Result domain.AnalysisResult `json:"result"`
	View   presentation.View     `json:"view"`
}

// POST /v1/analyze
// Body: {"input": "<project description>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&body); err != nil {
		return badRequest{errors.New("invalid JSON body")}
	}
	// the session trims; everything else is stored as submitted
	input := body.Input
	if err := middleware.ValidateInputSize(input); err != nil {
		return badRequest{err}
	}
	if _, err := appanalysis.Validate(input); err != nil {
		return err
	}

	done := middleware.Stats.AnalysisStarted()
	res, err := r.session.Submit(req.Context(), input)
	done(err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, analysisResponse{Result: res, View: presentation.Build(res)})
}

type entrySummary struct {
	ID        domain.EntryID   `json:"id"`
	Summary   string           `json:"summary"`
	RiskLevel string           `json:"risk_level"`
	RiskClass domain.RiskClass `json:"risk_class"`
	CreatedAt string           `json:"created_at"`
}

// GET /v1/history?limit=10
func (r *Router) handleHistoryList(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit, history.Capacity)

	list, err := r.history.List(req.Context())
	if err != nil {
		return err
	}
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]entrySummary, 0, len(list))
	for _, e := range list {
		out = append(out, entrySummary{
			ID:        e.ID,
			Summary:   e.Summary,
			RiskLevel: e.RiskLevel,
			RiskClass: e.RiskClass,
			CreatedAt: e.CreatedAt,
		})
	}
	return writeJSON(w, http.StatusOK, out)
}

type entryResponse struct {
	Entry domain.HistoryEntry `json:"entry"`
	View  presentation.View   `json:"view"`
}

// GET /v1/history/{id}
// Replays the stored result without contacting the risk service.
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ValidateEntryID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest{err}
	}
	entry, err := r.session.Replay(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, entryResponse{Entry: entry, View: presentation.Build(entry.Result)})
}

// DELETE /v1/history/{id}
func (r *Router) handleHistoryDelete(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ValidateEntryID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest{err}
	}
	if err := r.history.Delete(req.Context(), id); err != nil {
		return err
	}
	middleware.Stats.HistoryDeleted()
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DELETE /v1/history?confirm=true
func (r *Router) handleHistoryClear(w http.ResponseWriter, req *http.Request) error {
	if ok, _ := strconv.ParseBool(req.URL.Query().Get("confirm")); !ok {
		return badRequest{errors.New("clearing history requires confirm=true")}
	}
	if err := r.history.Clear(req.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

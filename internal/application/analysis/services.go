package analysis

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bryanwahyu/riskscope/internal/application"
	"github.com/bryanwahyu/riskscope/internal/application/history"
	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

// MinInputLength is the shortest accepted project description, after trimming.
const MinInputLength = 20

// Session implements the submit / normalize / record / render use-case.
// Transport calls may overlap; id assignment and recording are serialized.
type Session struct {
	Transport domain.Transport
	History   *history.Store
	Renderer  domain.Renderer // optional
	Clock     application.Clock

	mu sync.Mutex
}

// Validate applies the client-side input policy and returns the trimmed text.
func Validate(input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", domain.ErrEmptyInput
	}
	if utf8.RuneCountInString(text) < MinInputLength {
		return "", domain.ErrTooShort
	}
	return text, nil
}

// Submit validates input, sends it to the risk service and, on success,
// records a HistoryEntry and renders the canonical result. Any error leaves
// the history untouched.
func (s *Session) Submit(ctx context.Context, input string) (domain.AnalysisResult, error) {
	text, err := Validate(input)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	log.Printf("analysis submitted chars=%d", utf8.RuneCountInString(text))

	payload, err := s.Transport.Send(ctx, text)
	if err != nil {
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Kind: domain.TransportUnreachable, Message: err.Error(), Err: err}
		}
		log.Printf("analysis failed kind=transport err=%v", err)
		return domain.AnalysisResult{}, err
	}

	out := domain.Normalize(payload)
	if err := out.Err(); err != nil {
		log.Printf("analysis failed kind=service err=%v", err)
		return domain.AnalysisResult{}, err
	}

	if err := s.record(ctx, text, out.Result); err != nil {
		return domain.AnalysisResult{}, err
	}

	s.render(out.Result)
	return out.Result, nil
}

// Replay renders a stored entry's result exactly as it was recorded.
func (s *Session) Replay(ctx context.Context, id domain.EntryID) (domain.HistoryEntry, error) {
	entry, err := s.History.Get(ctx, id)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	s.render(entry.Result)
	return entry, nil
}

func (s *Session) record(ctx context.Context, text string, res domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.newEntry(ctx, text, res)
	if err != nil {
		return err
	}
	return s.History.Record(ctx, entry)
}

func (s *Session) newEntry(ctx context.Context, text string, res domain.AnalysisResult) (domain.HistoryEntry, error) {
	now := s.clock().Now()
	id := domain.EntryID(now.UnixMilli())

	// keep ids monotonic even when two analyses land in the same millisecond
	latest, ok, err := s.History.Latest(ctx)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if ok && latest.ID >= id {
		id = latest.ID + 1
	}

	level := res.RiskLevel
	if strings.TrimSpace(level) == "" {
		level = domain.LabelComplete
	}
	return domain.HistoryEntry{
		ID:        id,
		Summary:   domain.GenerateSummary(text),
		FullInput: text,
		RiskLevel: level,
		RiskClass: res.Class().Tone(),
		CreatedAt: application.ISOTimestamp(now),
		Result:    res,
	}, nil
}

func (s *Session) render(res domain.AnalysisResult) {
	if s.Renderer != nil {
		s.Renderer.Render(res)
	}
}

func (s *Session) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

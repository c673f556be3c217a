package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/riskscope/internal/application/history"
	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
	"github.com/bryanwahyu/riskscope/internal/infra/storage"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stubTransport struct {
	payload string
	err     error

	mu    sync.Mutex
	calls int
}

func (s *stubTransport) Send(ctx context.Context, text string) (domain.Payload, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var p domain.Payload
	if err := json.Unmarshal([]byte(s.payload), &p); err != nil {
		return nil, err
	}
	return p, nil
}

type recordingRenderer struct {
	rendered []domain.AnalysisResult
}

func (r *recordingRenderer) Render(res domain.AnalysisResult) {
	r.rendered = append(r.rendered, res)
}

var testNow = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func newSession(tr domain.Transport) (*Session, *recordingRenderer) {
	r := &recordingRenderer{}
	return &Session{
		Transport: tr,
		History:   history.NewStore(storage.NewMemory(), ""),
		Renderer:  r,
		Clock:     fixedClock{t: testNow},
	}, r
}

func historyLen(t *testing.T, s *Session) int {
	t.Helper()
	list, err := s.History.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(list)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  error
	}{
		{"", domain.ErrEmptyInput},
		{"   \n\t ", domain.ErrEmptyInput},
		{"a", domain.ErrTooShort},
		{"  short text here  ", domain.ErrTooShort},
		{"nineteen characters", domain.ErrTooShort},
	}
	for _, tc := range cases {
		tr := &stubTransport{payload: `{"risk_level":"Low"}`}
		s, r := newSession(tr)
		_, err := s.Submit(context.Background(), tc.input)
		if !errors.Is(err, tc.want) {
			t.Errorf("Submit(%q) err = %v, want %v", tc.input, err, tc.want)
		}
		if !domain.IsValidation(err) {
			t.Errorf("Submit(%q): IsValidation false for %v", tc.input, err)
		}
		if tr.calls != 0 {
			t.Errorf("Submit(%q) called transport", tc.input)
		}
		if historyLen(t, s) != 0 || len(r.rendered) != 0 {
			t.Errorf("Submit(%q) had side effects", tc.input)
		}
	}
}

func TestSubmitStructured(t *testing.T) {
	t.Parallel()

	tr := &stubTransport{payload: `{"risk_level":"High","success_probability":30,"risk_categories":{"technical":80}}`}
	s, r := newSession(tr)

	input := "Ride sharing app for pets"
	if len(input) != 25 {
		t.Fatalf("fixture length = %d", len(input))
	}
	res, err := s.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.RiskLevel != "High" || res.SuccessProbability == nil || *res.SuccessProbability != 30 {
		t.Fatalf("result = %+v", res)
	}
	if res.RiskCategories["technical"] != 80 {
		t.Fatalf("categories = %v", res.RiskCategories)
	}

	list, _ := s.History.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("history len = %d", len(list))
	}
	e := list[0]
	if e.RiskLevel != "High" || e.RiskClass != domain.RiskHigh {
		t.Fatalf("entry = %+v", e)
	}
	if e.ID != domain.EntryID(testNow.UnixMilli()) || e.CreatedAt != "2026-10-19T08:30:00.000Z" {
		t.Fatalf("entry id=%d created=%s", e.ID, e.CreatedAt)
	}
	if e.Summary != input || e.FullInput != input {
		t.Fatalf("summary=%q full=%q", e.Summary, e.FullInput)
	}
	if !reflect.DeepEqual(e.Result, res) {
		t.Fatalf("stored result differs from returned result")
	}
	if len(r.rendered) != 1 || !reflect.DeepEqual(r.rendered[0], res) {
		t.Fatalf("rendered = %+v", r.rendered)
	}
}

func TestSubmitTrimsInput(t *testing.T) {
	t.Parallel()

	s, _ := newSession(&stubTransport{payload: `{"response":"free text"}`})
	if _, err := s.Submit(context.Background(), "  Inventory tracker for a bakery chain  "); err != nil {
		t.Fatal(err)
	}
	list, _ := s.History.List(context.Background())
	if list[0].FullInput != "Inventory tracker for a bakery chain" {
		t.Fatalf("full input = %q", list[0].FullInput)
	}
	if list[0].RiskLevel != domain.LabelComplete || list[0].RiskClass != domain.RiskMedium {
		t.Fatalf("narrative entry = %+v", list[0])
	}
}

func TestSubmitServiceError(t *testing.T) {
	t.Parallel()

	s, r := newSession(&stubTransport{payload: `{"error":"Invalid input detected.","risk_level":"High"}`})
	_, err := s.Submit(context.Background(), "Inventory tracker for a bakery chain")
	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) || svcErr.Message != "Invalid input detected." {
		t.Fatalf("err = %v", err)
	}
	if historyLen(t, s) != 0 || len(r.rendered) != 0 {
		t.Fatal("service error must not record or render")
	}
}

func TestSubmitTransportError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		wantKind domain.TransportErrorKind
	}{
		{"typed", &domain.TransportError{Kind: domain.TransportStatus, StatusCode: 500, Message: "http error status: 500"}, domain.TransportStatus},
		{"untyped becomes unreachable", errors.New("dial tcp: connection refused"), domain.TransportUnreachable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, r := newSession(&stubTransport{err: tc.err})
			_, err := s.Submit(context.Background(), "Inventory tracker for a bakery chain")
			var te *domain.TransportError
			if !errors.As(err, &te) || te.Kind != tc.wantKind {
				t.Fatalf("err = %v", err)
			}
			if historyLen(t, s) != 0 || len(r.rendered) != 0 {
				t.Fatal("transport error must not record or render")
			}
		})
	}
}

func TestSubmitKeepsIDsMonotonic(t *testing.T) {
	t.Parallel()

	s, _ := newSession(&stubTransport{payload: `{"risk_level":"Low"}`})
	for i := 0; i < 3; i++ {
		if _, err := s.Submit(context.Background(), "Inventory tracker for a bakery chain"); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := s.History.List(context.Background())
	base := domain.EntryID(testNow.UnixMilli())
	want := []domain.EntryID{base + 2, base + 1, base}
	for i, e := range list {
		if e.ID != want[i] {
			t.Fatalf("ids[%d] = %d, want %d", i, e.ID, want[i])
		}
	}
}

func TestConcurrentSubmitsGetDistinctIDs(t *testing.T) {
	t.Parallel()

	s, _ := newSession(&stubTransport{payload: `{"risk_level":"Low"}`})
	s.Renderer = nil

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Submit(context.Background(), "Inventory tracker for a bakery chain"); err != nil {
				t.Errorf("Submit: %v", err)
			}
		}()
	}
	wg.Wait()

	list, _ := s.History.List(context.Background())
	if len(list) != 5 {
		t.Fatalf("len = %d, want 5", len(list))
	}
	seen := map[domain.EntryID]bool{}
	for _, e := range list {
		if seen[e.ID] {
			t.Fatalf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestReplay(t *testing.T) {
	t.Parallel()

	s, r := newSession(&stubTransport{payload: `{"risk_level":"Medium","detailed_analysis":"oops"}`})
	res, err := s.Submit(context.Background(), "Inventory tracker for a bakery chain")
	if err != nil {
		t.Fatal(err)
	}

	entry, err := s.Replay(context.Background(), domain.EntryID(testNow.UnixMilli()))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !reflect.DeepEqual(entry.Result, res) {
		t.Fatalf("replayed result differs:\n got %+v\nwant %+v", entry.Result, res)
	}
	if len(r.rendered) != 2 || !reflect.DeepEqual(r.rendered[1], res) {
		t.Fatalf("rendered = %+v", r.rendered)
	}

	if _, err := s.Replay(context.Background(), 1); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("unknown id err = %v", err)
	}
}

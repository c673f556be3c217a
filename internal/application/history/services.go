package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

const (
	// DefaultKey is the single well-known key the whole history lives under.
	DefaultKey = "projectRiskHistory"
	// Capacity is the maximum number of entries kept; the oldest is evicted.
	Capacity = 10
)

// Store persists a capped, newest-first list of HistoryEntry as one JSON
// array in a KeyValueStore. Every operation holds mu for the whole
// read-modify-write, so concurrent callers never lose updates.
type Store struct {
	KV  domain.KeyValueStore
	Key string

	mu sync.Mutex
}

func NewStore(kv domain.KeyValueStore, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{KV: kv, Key: key}
}

// Record prepends e and truncates to Capacity.
func (s *Store) Record(ctx context.Context, e domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range entries {
		if existing.ID == e.ID {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateEntry, e.ID)
		}
	}

	entries = append([]domain.HistoryEntry{e}, entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	if err := s.save(ctx, entries); err != nil {
		return err
	}
	log.Printf("history recorded id=%d size=%d", e.ID, len(entries))
	return nil
}

// List returns entries newest-first. Missing or corrupt data reads as empty.
func (s *Store) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the stored entry with the given id for replay.
func (s *Store) Get(ctx context.Context, id domain.EntryID) (domain.HistoryEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, fmt.Errorf("%w: %d", domain.ErrEntryNotFound, id)
}

// Latest returns the newest entry, false when history is empty.
func (s *Store) Latest(ctx context.Context) (domain.HistoryEntry, bool, error) {
	entries, err := s.List(ctx)
	if err != nil || len(entries) == 0 {
		return domain.HistoryEntry{}, false, err
	}
	return entries[0], true, nil
}

// Delete removes the entry with id. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id domain.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.save(ctx, kept)
}

// Clear removes the whole history. Confirmation is the caller's job.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.KV.Delete(ctx, s.Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	log.Printf("history cleared key=%s", s.Key)
	return nil
}

func (s *Store) load(ctx context.Context) ([]domain.HistoryEntry, error) {
	raw, err := s.KV.Get(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(raw) == 0 {
		return []domain.HistoryEntry{}, nil
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		log.Printf("history corrupt key=%s err=%v", s.Key, err)
		return []domain.HistoryEntry{}, nil
	}
	return entries, nil
}

// storedEntry keeps Result as a pointer so a missing "result" is detectable.
type storedEntry struct {
	domain.HistoryEntry
	Result *domain.AnalysisResult `json:"result"`
}

// decodeEntries rejects the whole list when any element lacks an id,
// a creation time or a result object.
func decodeEntries(raw []byte) ([]domain.HistoryEntry, error) {
	var stored []storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(stored))
	for i, st := range stored {
		switch {
		case st.ID <= 0:
			return nil, fmt.Errorf("entry %d: missing id", i)
		case st.CreatedAt == "":
			return nil, fmt.Errorf("entry %d: missing created_at", i)
		case st.Result == nil:
			return nil, fmt.Errorf("entry %d: missing result", i)
		}
		e := st.HistoryEntry
		e.Result = *st.Result
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) save(ctx context.Context, entries []domain.HistoryEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.KV.Set(ctx, s.Key, b); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixperk/handset/pkg/storage"
	"github.com/pixperk/handset/pkg/types"
)

// JournalSink appends every event to a durable journal and serves it back as history.
// When retain is positive only the newest retain records are kept.
type JournalSink struct {
	journal *storage.Journal
	retain  uint64
}

func NewJournalSink(journal *storage.Journal, retain int) *JournalSink {
	s := &JournalSink{journal: journal}
	if retain > 0 {
		s.retain = uint64(retain)
	}
	return s
}

func (s *JournalSink) Name() string { return "journal" }

func (s *JournalSink) Notify(_ context.Context, ev types.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("journal encode event: %w", err)
	}

	idx, err := s.journal.Append(data)
	if err != nil {
		return err
	}

	if s.retain > 0 && idx > s.retain {
		if err := s.journal.Truncate(idx - s.retain); err != nil {
			return fmt.Errorf("journal retention: %w", err)
		}
	}
	return nil
}

// HistoryEntry is one journaled event with its position.
type HistoryEntry struct {
	Index uint64      `json:"index"`
	Event types.Event `json:"event"`
}

// History returns up to limit events starting at index from.
func (s *JournalSink) History(from uint64, limit int) ([]HistoryEntry, error) {
	records, err := s.journal.Read(from, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		var ev types.Event
		if err := json.Unmarshal(rec.Data, &ev); err != nil {
			return nil, fmt.Errorf("journal decode %d: %w", rec.Index, err)
		}
		entries = append(entries, HistoryEntry{Index: rec.Index, Event: ev})
	}
	return entries, nil
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"
)

// Journal is an append-only, indexed record log kept in BoltDB
// raft-boltdb's log store gives us ordered uint64 keys and range deletes for free
// records are stored as raft.LogCommand entries, term is always 1
type Journal struct {
	mu    sync.Mutex
	store *raftboltdb.BoltStore
}

// one stored record
type Record struct {
	Index uint64
	Data  []byte
}

func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}

	store, err := raftboltdb.New(raftboltdb.Options{
		Path: path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &Journal{store: store}, nil
}

// appends data and returns its index, indexes start at 1
func (j *Journal) Append(data []byte) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	last, err := j.store.LastIndex()
	if err != nil {
		return 0, fmt.Errorf("journal last index: %w", err)
	}

	entry := &raft.Log{
		Index: last + 1,
		Term:  1,
		Type:  raft.LogCommand,
		Data:  data,
	}
	if err := j.store.StoreLog(entry); err != nil {
		return 0, fmt.Errorf("journal append: %w", err)
	}

	return entry.Index, nil
}

// returns up to limit records starting at index from
// from below the first retained index starts at the first one
func (j *Journal) Read(from uint64, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	first, err := j.store.FirstIndex()
	if err != nil {
		return nil, fmt.Errorf("journal first index: %w", err)
	}
	last, err := j.store.LastIndex()
	if err != nil {
		return nil, fmt.Errorf("journal last index: %w", err)
	}
	if last == 0 {
		return nil, nil
	}
	if from < first {
		from = first
	}

	var records []Record
	for idx := from; idx <= last && len(records) < limit; idx++ {
		var entry raft.Log
		if err := j.store.GetLog(idx, &entry); err != nil {
			if errors.Is(err, raft.ErrLogNotFound) {
				continue
			}
			return nil, fmt.Errorf("journal read %d: %w", idx, err)
		}
		records = append(records, Record{Index: entry.Index, Data: entry.Data})
	}

	return records, nil
}

// drops every record with index <= upTo
func (j *Journal) Truncate(upTo uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	first, err := j.store.FirstIndex()
	if err != nil {
		return fmt.Errorf("journal first index: %w", err)
	}
	if first == 0 || upTo < first {
		return nil
	}
	return j.store.DeleteRange(first, upTo)
}

// index of the newest record, 0 when empty
func (j *Journal) LastIndex() (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.store.LastIndex()
}

func (j *Journal) Close() error {
	return j.store.Close()
}

package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const outcomePrefix = "outcome-"

// Entry is one resolved load.
type Entry struct {
	Handle string    `json:"handle"`
	Path   string    `json:"path"`
	Kind   string    `json:"kind"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Store is a LevelDB-backed journal of load outcomes. Keys sort by time,
// so iteration order is chronological.
type Store struct {
	db  *leveldb.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e. A zero At is stamped with the current time.
func (s *Store) Record(e Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history: store is closed")
	}
	if e.At.IsZero() {
		e.At = s.now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history: marshal %s: %w", e.Path, err)
	}
	if err := s.db.Put(entryKey(e), data, nil); err != nil {
		return fmt.Errorf("history: put %s: %w", e.Path, err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history: store is closed")
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(outcomePrefix)), nil)
	defer iter.Release()

	var out []Entry
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			continue
		}
		out = append(out, e)
		if n > 0 && len(out) >= n {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("history: iterate: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep entries and deletes the rest.
func (s *Store) Prune(keep int) error {
	if keep < 0 {
		return fmt.Errorf("history: keep must not be negative")
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(outcomePrefix)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	seen := 0
	for ok := iter.Last(); ok; ok = iter.Prev() {
		seen++
		if seen > keep {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("history: iterate: %w", err)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	return nil
}

func entryKey(e Entry) []byte {
	return []byte(fmt.Sprintf("%s%020d-%s", outcomePrefix, e.At.UnixNano(), e.Handle))
}

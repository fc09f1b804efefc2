// Package history persists finalized transcript lines in a local badger
// database, keyed by session so past transcripts can be re-read.
package history

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Store appends transcript lines for one session. Safe for use from a
// single writer plus concurrent readers.
type Store struct {
	db      *badger.DB
	session string

	mu   sync.Mutex
	next uint64
}

// Open opens (or creates) the store at dir and positions the write index
// after any lines already recorded for session.
func Open(dir, session string) (*Store, error) {
	if session == "" {
		return nil, fmt.Errorf("history: session ID required")
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	s := &Store{db: db, session: session}
	if err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(iterOpts(session))
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			s.next++
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("scan session %q: %w", session, err)
	}

	return s, nil
}

// AppendLine records one finalized transcript line.
func (s *Store) AppendLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lineKey(s.session, s.next)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(text))
	})
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	s.next++
	return nil
}

// Lines returns the recorded lines for a session, in append order.
func (s *Store) Lines(session string) ([]string, error) {
	var lines []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(iterOpts(session))
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				lines = append(lines, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read session %q: %w", session, err)
	}
	return lines, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// lineKey is "<session>/<index>" with a fixed-width index so the
// lexicographic key order is the append order.
func lineKey(session string, index uint64) []byte {
	return []byte(fmt.Sprintf("%s/%012d", session, index))
}

func iterOpts(session string) badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(session + "/")
	return opts
}

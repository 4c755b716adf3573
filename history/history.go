// Package history persists finished transcriptions in a local badger
// database.
package history

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"murmur/log"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history: record not found")

var (
	recPrefix = []byte("rec:")
	seqKey    = []byte("seq:transcriptions")
)

// searchLimit caps how many records a substring search returns.
const searchLimit = 100

// Record is one stored transcription. ProcessedText is empty when
// cleanup was disabled or failed.
type Record struct {
	ID            uint64    `json:"id"`
	Text          string    `json:"text"`
	ProcessedText string    `json:"processed_text,omitempty"`
	Language      string    `json:"language,omitempty"`
	DurationMS    int64     `json:"duration_ms,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Final returns the text the user actually received.
func (r Record) Final() string {
	if r.ProcessedText != "" {
		return r.ProcessedText
	}
	return r.Text
}

// Store is a badger-backed transcription archive. Keys are fixed-width
// big-endian ids so iteration order is insertion order.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (creating if needed) the on-disk store at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("history: dir is required")
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory runs the store without disk persistence, for tests.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(badgerLogger{}))
	if err != nil {
		return nil, err
	}
	seq, err := db.GetSequence(seqKey, 64)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, seq: seq}, nil
}

func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		log.Warnf("history sequence release: %v", err)
	}
	return s.db.Close()
}

// Append stores rec under a fresh id and returns it. Ids start at 1 and
// only grow, even across restarts.
func (s *Store) Append(rec Record) (uint64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, err
	}
	rec.ID = n + 1
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFor(rec.ID), val)
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Reverse = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		// Reverse iteration starts past the largest possible id.
		seek := append(bytes.Clone(recPrefix), bytes.Repeat([]byte{0xff}, 8)...)
		for it.Seek(seek); it.ValidForPrefix(recPrefix) && len(out) < limit; it.Next() {
			rec, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Search returns records whose raw or processed text contains query,
// case-insensitively, newest first.
func (s *Store) Search(query string) ([]Record, error) {
	needle := strings.ToLower(query)
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Reverse = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		seek := append(bytes.Clone(recPrefix), bytes.Repeat([]byte{0xff}, 8)...)
		for it.Seek(seek); it.ValidForPrefix(recPrefix) && len(out) < searchLimit; it.Next() {
			rec, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if strings.Contains(strings.ToLower(rec.Text), needle) ||
				strings.Contains(strings.ToLower(rec.ProcessedText), needle) {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

// Get fetches a single record by id.
func (s *Store) Get(id uint64) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFor(id))
		if err != nil {
			return err
		}
		var derr error
		rec, derr = decodeItem(item)
		return derr
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *Store) Delete(id uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyFor(id))
	})
}

func keyFor(id uint64) []byte {
	key := make([]byte, len(recPrefix)+8)
	copy(key, recPrefix)
	binary.BigEndian.PutUint64(key[len(recPrefix):], id)
	return key
}

func decodeItem(item *badger.Item) (Record, error) {
	var rec Record
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

// badgerLogger routes badger output into the diagnostics log, dropping
// its chatty info and debug levels.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { log.Errorf("badger: "+f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { log.Warnf("badger: "+f, v...) }
func (badgerLogger) Infof(string, ...interface{})        {}
func (badgerLogger) Debugf(string, ...interface{})       {}

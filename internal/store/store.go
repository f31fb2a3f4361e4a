// Package store persists rendered transcripts in a bbolt database, keyed by
// the transcript's content hash.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when no transcript has the requested hash.
var ErrNotFound = errors.New("transcript not found")

const bucketTranscripts = "transcripts"

// Record is a stored transcript. Documents are not stored; parsing is
// deterministic, so they are rebuilt from Messages and Dialect.
type Record struct {
	Hash      string    `json:"hash"`
	Dialect   string    `json:"dialect"`
	Messages  []string  `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a transcript store backed by a single bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketTranscripts))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores rec under its hash, replacing any earlier record.
func (s *Store) Put(rec Record) error {
	if rec.Hash == "" {
		return errors.New("record has no hash")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTranscripts)).Put([]byte(rec.Hash), data)
	})
}

// Get returns the record stored under hash.
func (s *Store) Get(hash string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketTranscripts)).Get([]byte(hash))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}

// Has reports whether a record exists for hash.
func (s *Store) Has(hash string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket([]byte(bucketTranscripts)).Get([]byte(hash)) != nil
		return nil
	})
	return ok, err
}

// Delete removes the record for hash. Deleting a missing record is not an
// error.
func (s *Store) Delete(hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTranscripts)).Delete([]byte(hash))
	})
}

// Hashes returns the stored hashes in key order.
func (s *Store) Hashes() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketTranscripts)).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			out = append(out, string(k))
		}
		return nil
	})
	return out, err
}

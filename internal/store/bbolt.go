package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// matchesBucket holds one JSON-encoded Match per id.
	matchesBucket = "matches"
	// historyBucket holds JSON-encoded RunRecords keyed by a big-endian
	// sequence number, so iteration order is append order.
	historyBucket = "history"
)

// BoltStore implements the Store interface using BoltDB.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a BoltDB-backed store at the given path.
func NewBoltStore(path string) (Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(matchesBucket)); err != nil {
			return fmt.Errorf("create matches bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(historyBucket)); err != nil {
			return fmt.Errorf("create history bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Load reads all matches and history records. An entry that fails to
// decode is skipped rather than failing the load; a half-readable store
// still yields a usable state.
func (s *BoltStore) Load() (*State, error) {
	state := NewState()

	err := s.db.View(func(tx *bolt.Tx) error {
		matches := tx.Bucket([]byte(matchesBucket))
		if matches != nil {
			matches.ForEach(func(k, v []byte) error {
				m := &Match{}
				if err := json.Unmarshal(v, m); err != nil {
					return nil
				}
				state.Matches[string(k)] = m
				return nil
			})
		}

		history := tx.Bucket([]byte(historyBucket))
		if history != nil {
			history.ForEach(func(k, v []byte) error {
				var rec RunRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return nil
				}
				state.History = append(state.History, rec)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return NewState(), nil
	}

	state.Normalize()
	return state, nil
}

// Save replaces the persisted state in one transaction. Buckets are
// dropped and rewritten so removals made by the pruner take effect.
func (s *BoltStore) Save(state *State) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{matchesBucket, historyBucket} {
			if tx.Bucket([]byte(name)) != nil {
				if err := tx.DeleteBucket([]byte(name)); err != nil {
					return fmt.Errorf("reset %s bucket: %w", name, err)
				}
			}
		}

		matches, err := tx.CreateBucket([]byte(matchesBucket))
		if err != nil {
			return fmt.Errorf("create matches bucket: %w", err)
		}
		for id, m := range state.Matches {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal match %s: %w", id, err)
			}
			if err := matches.Put([]byte(id), data); err != nil {
				return fmt.Errorf("put match %s: %w", id, err)
			}
		}

		history, err := tx.CreateBucket([]byte(historyBucket))
		if err != nil {
			return fmt.Errorf("create history bucket: %w", err)
		}
		for i, rec := range state.History {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal run record: %w", err)
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := history.Put(key, data); err != nil {
				return fmt.Errorf("put run record: %w", err)
			}
		}

		return nil
	})
}

// Close releases resources held by the store.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

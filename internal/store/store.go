package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultLimit is how many targets are kept when no limit is given.
const DefaultLimit = 20

// Bucket names
var (
	bucketHistory = []byte("history")
)

// historyEntry is the stored form of one remembered target
type historyEntry struct {
	Target   string    `json:"target"`
	LastUsed time.Time `json:"last_used"`
	Uses     int       `json:"uses"`
}

// HistoryStore implements domain.HistoryRepository using BoltDB.
// Entries are mirrored in memory; the database is only written.
type HistoryStore struct {
	db    *bolt.DB
	limit int
	now   func() time.Time

	mu      sync.RWMutex // Protects entries
	entries map[string]historyEntry
}

// Open opens the history database at path. An empty path keeps history in
// memory only.
func Open(path string, limit int) (*HistoryStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &HistoryStore{
		limit:   limit,
		now:     time.Now,
		entries: make(map[string]historyEntry),
	}
	if path == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).ForEach(func(k, v []byte) error {
			var entry historyEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				// Skip unreadable entries rather than refusing to start
				return nil
			}
			s.entries[string(k)] = entry
			return nil
		})
	})
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record moves target to the front of the history, dropping the oldest
// entries beyond the limit.
func (s *HistoryStore) Record(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	s.mu.Lock()
	entry := s.entries[target]
	entry.Target = target
	entry.Uses++
	entry.LastUsed = s.now()
	s.entries[target] = entry
	evicted := s.pruneLocked()
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		for _, key := range evicted {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return b.Put([]byte(target), data)
	})
}

// Recent returns remembered targets, most recent first.
func (s *HistoryStore) Recent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedLocked()
	targets := make([]string, len(sorted))
	for i, entry := range sorted {
		targets[i] = entry.Target
	}
	return targets
}

// Clear forgets every target.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]historyEntry)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	})
}

func (s *HistoryStore) sortedLocked() []historyEntry {
	sorted := make([]historyEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LastUsed.Equal(sorted[j].LastUsed) {
			return sorted[i].Target < sorted[j].Target
		}
		return sorted[i].LastUsed.After(sorted[j].LastUsed)
	})
	return sorted
}

// pruneLocked drops entries beyond the limit and returns their keys.
func (s *HistoryStore) pruneLocked() []string {
	if len(s.entries) <= s.limit {
		return nil
	}
	var evicted []string
	for _, entry := range s.sortedLocked()[s.limit:] {
		delete(s.entries, entry.Target)
		evicted = append(evicted, entry.Target)
	}
	return evicted
}

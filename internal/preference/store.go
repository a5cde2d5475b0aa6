// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tomtom215/discovery/internal/config"
	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/metrics"
	"github.com/tomtom215/discovery/internal/models"
)

const (
	keyPrefix      = "pref:"
	defaultLRUSize = 1024
)

// ErrNotFound is returned by Store.Get for a user with no stored preference.
var ErrNotFound = errors.New("preference not found")

// Store persists one UserPreference per user in Badger. Decoded records are
// kept in an LRU; callers always receive their own copy.
type Store struct {
	db    *badger.DB
	cache *lru.Cache[string, *models.UserPreference]
	path  string
}

// OpenStore opens the Badger directory at cfg.Path. An empty path runs
// Badger in memory.
func OpenStore(cfg config.PreferenceConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	size := cfg.LRUSize
	if size <= 0 {
		size = defaultLRUSize
	}
	cache, err := lru.New[string, *models.UserPreference](size)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create preference cache: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.Path == "").
		Int("lru_size", size).
		Msg("Preference store opened")
	return &Store{db: db, cache: cache, path: cfg.Path}, nil
}

// String names the store for supervisor logs.
func (s *Store) String() string { return "preference-store" }

// Get returns the stored preference for userID or ErrNotFound.
func (s *Store) Get(_ context.Context, userID string) (pref *models.UserPreference, err error) {
	defer func() {
		if !errors.Is(err, ErrNotFound) {
			metrics.RecordPreferenceOperation("get", err)
		}
	}()

	if cached, ok := s.cache.Get(userID); ok {
		return cached.Clone(), nil
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get preference: %w", err)
		}
		return item.Value(func(val []byte) error {
			var p models.UserPreference
			if err := json.Unmarshal(val, &p); err != nil {
				return fmt.Errorf("unmarshal preference: %w", err)
			}
			pref = &p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	pref.EnsureDefaults()
	s.cache.Add(userID, pref.Clone())
	return pref, nil
}

// Put writes pref, replacing any previous record for the same user.
func (s *Store) Put(_ context.Context, pref *models.UserPreference) (err error) {
	defer func() { metrics.RecordPreferenceOperation("put", err) }()

	pref.EnsureDefaults()
	data, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("marshal preference: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(storeKey(pref.UserID), data))
	})
	if err != nil {
		s.cache.Remove(pref.UserID)
		return fmt.Errorf("put preference: %w", err)
	}

	s.cache.Add(pref.UserID, pref.Clone())
	return nil
}

// Count returns the number of stored preferences.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space. Badger returns ErrNoRewrite when there is
// nothing to collect.
func (s *Store) RunGC() error {
	if s.path == "" {
		return nil
	}
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// Serve runs value log GC on an interval until ctx is done. It satisfies
// suture.Service; closing stays with the owner.
func (s *Store) Serve(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Preference store GC failed")
			}
		}
	}
}

// Close closes Badger. The LRU is purged.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.db.Close()
}

func storeKey(userID string) []byte {
	return []byte(keyPrefix + userID)
}

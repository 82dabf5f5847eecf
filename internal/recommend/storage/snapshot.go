// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinemamaya/internal/recommend"
)

const (
	spaceKeyPrefix = "space:"
	metaKeyPrefix  = "meta:"
)

// ErrCorruptSnapshot is returned when a payload fails its integrity check.
var ErrCorruptSnapshot = errors.New("vector space snapshot corrupt")

// Config configures the snapshot store.
type Config struct {
	// Path is the BadgerDB directory. Empty opens an in-memory store.
	Path string

	// TTL expires snapshots after this duration. Zero keeps them forever.
	TTL time.Duration
}

// Metadata describes a stored snapshot.
type Metadata struct {
	Checksum   string    `json:"checksum"`
	Items      int       `json:"items"`
	Vocabulary int       `json:"vocabulary"`
	BuiltAt    time.Time `json:"built_at"`
	SavedAt    time.Time `json:"saved_at"`
	SizeBytes  int64     `json:"size_bytes"`
	Digest     string    `json:"digest"`
}

// Store keeps vector spaces in BadgerDB. It implements recommend.SnapshotStore.
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
}

// Open opens (or creates) the snapshot store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "snapshots").Logger(),
	}
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.Path == "").
		Dur("ttl", cfg.TTL).
		Msg("snapshot store opened")
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSpace stores a fitted space under its checksum.
func (s *Store) SaveSpace(ctx context.Context, space *recommend.VectorSpace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if space == nil || space.Checksum == "" {
		return errors.New("space must have a checksum")
	}

	payload, err := encode(space)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(payload)
	meta := Metadata{
		Checksum:   space.Checksum,
		Items:      len(space.Items),
		Vocabulary: len(space.Vocabulary),
		BuiltAt:    space.BuiltAt,
		SavedAt:    time.Now().UTC(),
		SizeBytes:  int64(len(payload)),
		Digest:     hex.EncodeToString(digest[:]),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		spaceEntry := badger.NewEntry([]byte(spaceKeyPrefix+space.Checksum), payload)
		metaEntry := badger.NewEntry([]byte(metaKeyPrefix+space.Checksum), metaData)
		if s.ttl > 0 {
			spaceEntry = spaceEntry.WithTTL(s.ttl)
			metaEntry = metaEntry.WithTTL(s.ttl)
		}
		if err := txn.SetEntry(spaceEntry); err != nil {
			return fmt.Errorf("set space: %w", err)
		}
		if err := txn.SetEntry(metaEntry); err != nil {
			return fmt.Errorf("set metadata: %w", err)
		}
		return nil
	})
}

// LoadSpace returns the space stored for checksum.
// A missing snapshot yields an error wrapping recommend.ErrSnapshotMiss.
func (s *Store) LoadSpace(ctx context.Context, checksum string) (*recommend.VectorSpace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload []byte
	var meta Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKeyPrefix + checksum))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", recommend.ErrSnapshotMiss, checksum)
		}
		if err != nil {
			return fmt.Errorf("get metadata: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}

		item, err = txn.Get([]byte(spaceKeyPrefix + checksum))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", recommend.ErrSnapshotMiss, checksum)
		}
		if err != nil {
			return fmt.Errorf("get space: %w", err)
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)
	if hex.EncodeToString(digest[:]) != meta.Digest {
		return nil, fmt.Errorf("%w: digest mismatch for %s", ErrCorruptSnapshot, checksum)
	}

	space, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if space.Checksum != checksum {
		return nil, fmt.Errorf("%w: stored checksum %s, want %s", ErrCorruptSnapshot, space.Checksum, checksum)
	}
	return space, nil
}

// List returns metadata for every stored snapshot.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var meta Metadata
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				return fmt.Errorf("decode metadata: %w", err)
			}
			out = append(out, meta)
		}
		return nil
	})
	return out, err
}

// Delete removes the snapshot for checksum. Deleting a missing snapshot is not an error.
func (s *Store) Delete(ctx context.Context, checksum string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{spaceKeyPrefix + checksum, metaKeyPrefix + checksum} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
}

func encode(space *recommend.VectorSpace) ([]byte, error) {
	raw, err := json.Marshal(space)
	if err != nil {
		return nil, fmt.Errorf("marshal space: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress space: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress space: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(payload []byte) (*recommend.VectorSpace, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decompress space: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress space: %w", err)
	}
	var space recommend.VectorSpace
	if err := json.Unmarshal(raw, &space); err != nil {
		return nil, fmt.Errorf("unmarshal space: %w", err)
	}
	return &space, nil
}

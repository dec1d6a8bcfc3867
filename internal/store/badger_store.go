// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	badger "github.com/dgraph-io/badger/v4"
)

const versionKey = "_meta/schema_version"

// BadgerStore implements Store with Badger DB.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (creating if needed) the Badger database at path.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(path))
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 20)
	return open(opts)
}

// OpenInMemory opens a throwaway store that lives only as long as the
// process.
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	log.Debugf("opened store at %q", opts.Dir)
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func recordKey(kind, key string) []byte {
	return []byte(kind + "/" + key)
}

func (s *BadgerStore) Get(ctx context.Context, kind, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(kind, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) List(ctx context.Context, kind string) ([]Entry, error) {
	prefix := []byte(kind + "/")
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, Entry{
				Key:   string(item.Key()[len(prefix):]),
				Value: value,
			})
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) Create(ctx context.Context, kind, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := recordKey(kind, key)
		if _, err := txn.Get(k); err == nil {
			return fmt.Errorf("%s %s: %w", kind, key, ErrExists)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(k, value)
	})
}

func (s *BadgerStore) Update(ctx context.Context, kind, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := recordKey(kind, key)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
			}
			return err
		}
		return txn.Set(k, value)
	})
}

func (s *BadgerStore) Destroy(ctx context.Context, kind, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := recordKey(kind, key)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
			}
			return err
		}
		return txn.Delete(k)
	})
}

func (s *BadgerStore) Version(ctx context.Context) (int, error) {
	raw, err := s.Get(ctx, "_meta", "schema_version")
	if errors.Is(err, ErrNotFound) {
		return 0, ErrUninitialized
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q: %w", raw, err)
	}
	return v, nil
}

func (s *BadgerStore) Sync(ctx context.Context) (int, error) {
	current, err := s.Version(ctx)
	if err != nil && !errors.Is(err, ErrUninitialized) {
		return 0, err
	}
	if current >= SchemaVersion {
		return current, nil
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(versionKey), []byte(strconv.Itoa(SchemaVersion)))
	})
	if err != nil {
		return 0, err
	}
	log.Infof("store schema synced from %d to %d", current, SchemaVersion)
	return SchemaVersion, nil
}

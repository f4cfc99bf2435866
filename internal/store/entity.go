package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides JSON-encoded CRUD for one record type under a key prefix,
// with optional non-unique secondary indexes maintained in the same
// transaction as the record.
type Entity[T any] struct {
	store   *Store
	prefix  string
	idOf    func(*T) string
	indexes []Index[T]
}

// Index is a secondary index. keyGen returns the indexed values of a record;
// several records may share a value.
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
}

// NewEntity creates an Entity for T stored under prefix. idOf returns the
// primary key of a record.
func NewEntity[T any](s *Store, prefix string, idOf func(*T) string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix, idOf: idOf}
}

// WithIndex adds a secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

// Create stores a new record. Returns ErrAlreadyExists if the id is taken.
func (e *Entity[T]) Create(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := e.idOf(record)

	return e.store.db.Update(func(txn *badger.Txn) error {
		key := buildKey(e.prefix, id)
		defer releaseKey(key)

		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%s%s: %w", e.prefix, id, ErrAlreadyExists)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing key: %w", err)
		}
		return e.write(txn, id, nil, record)
	})
}

// Get loads a record by id. Returns ErrNotFound when absent.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = e.read(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Modify loads the record, lets fn change it and writes it back with its
// indexes, all in one transaction. Returns ErrNotFound when absent; fn may
// return an error to abort without writing.
func (e *Entity[T]) Modify(ctx context.Context, id string, fn func(*T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		current, err := e.read(txn, id)
		if err != nil {
			return err
		}
		old := *current
		if err := fn(current); err != nil {
			return err
		}
		if e.idOf(current) != id {
			return fmt.Errorf("modify %s%s: primary key is immutable", e.prefix, id)
		}
		return e.write(txn, id, &old, current)
	})
}

// Delete removes a record and its index keys. Deleting an absent id is not
// an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		current, err := e.read(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := e.dropIndexes(txn, id, current); err != nil {
			return err
		}

		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		return nil
	})
}

// List iterates over every record in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		reported := false
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					reported = true
					yield(nil, err)
					return err
				}

				item := it.Item()
				if strings.HasPrefix(string(item.Key()[len(e.prefix):]), indexMarker) {
					continue
				}

				var record T
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &record)
				}); err != nil {
					err = fmt.Errorf("decode %s: %w", item.Key(), err)
					reported = true
					yield(nil, err)
					return err
				}

				if !yield(&record, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil && !reported {
			yield(nil, fmt.Errorf("list %s: %w", e.prefix, err))
		}
	}
}

// Count returns the number of records without decoding them.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	n := 0
	err := e.keys(ctx, func(string) { n++ })
	return n, err
}

// IDs returns every primary key in key order.
func (e *Entity[T]) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := e.keys(ctx, func(id string) { ids = append(ids, id) })
	return ids, err
}

func (e *Entity[T]) keys(ctx context.Context, visit func(id string)) error {
	return e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rest := string(it.Item().Key()[len(e.prefix):])
			if strings.HasPrefix(rest, indexMarker) {
				continue
			}
			visit(rest)
		}
		return nil
	})
}

// ScanIndex iterates over records whose indexed value starts with
// valuePrefix, ordered by (value, id). An empty valuePrefix visits the whole
// index. reverse flips the order.
func (e *Entity[T]) ScanIndex(ctx context.Context, name, valuePrefix string, reverse bool) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		reported := false
		err := e.store.db.View(func(txn *badger.Txn) error {
			prefix := indexScanPrefix(e.prefix, name, valuePrefix)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			opts.Reverse = reverse

			it := txn.NewIterator(opts)
			defer it.Close()

			seek := prefix
			if reverse {
				seek = append(append([]byte{}, prefix...), 0xFF)
			}

			for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					reported = true
					yield(nil, err)
					return err
				}

				id := idFromIndexKey(it.Item().Key())
				record, err := e.read(txn, id)
				if errors.Is(err, ErrNotFound) {
					e.store.logger.Warn("dangling index key", "index", name, "id", id)
					continue
				}
				if err != nil {
					reported = true
					yield(nil, err)
					return err
				}
				if !yield(record, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil && !reported {
			yield(nil, fmt.Errorf("scan index %s: %w", name, err))
		}
	}
}

func (e *Entity[T]) read(txn *badger.Txn, id string) (*T, error) {
	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}

	var record T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	}); err != nil {
		return nil, fmt.Errorf("decode %s%s: %w", e.prefix, id, err)
	}
	return &record, nil
}

// write stores record and replaces the index keys of old (nil on create).
func (e *Entity[T]) write(txn *badger.Txn, id string, old, record *T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s%s: %w", e.prefix, id, err)
	}

	if old != nil {
		if err := e.dropIndexes(txn, id, old); err != nil {
			return err
		}
	}

	if err := txn.Set([]byte(e.prefix+id), data); err != nil {
		return fmt.Errorf("set key: %w", err)
	}

	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(record) {
			if err := txn.Set(buildIndexKey(e.prefix, idx.name, value, id), nil); err != nil {
				return fmt.Errorf("set index %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) dropIndexes(txn *badger.Txn, id string, record *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(record) {
			if err := txn.Delete(buildIndexKey(e.prefix, idx.name, value, id)); err != nil {
				return fmt.Errorf("delete index %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

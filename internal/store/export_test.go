package store

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

// StoredSchemaVersion returns the version recorded in the database.
func (s *Store) StoredSchemaVersion(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var v int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaVersionKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
	})
	return v, err
}

package store

import "sync"

// Key layout. Containers are key prefixes inside one Badger keyspace:
//
//	entry:<id>                          entry record (JSON)
//	entry:idx:date:<date>\x00<id>       secondary index on Entry.Date, empty value
//	setting:<key>                       opaque JSON value
//	meta:schema_version                 schema version (JSON int)
const (
	prefixEntry   = "entry:"
	prefixSetting = "setting:"
	prefixMeta    = "meta:"

	indexMarker = "idx:"

	// indexSep terminates the indexed value. It sorts below every printable
	// byte so entries with equal values stay grouped and ordered by id.
	indexSep = '\x00'
)

var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 128)
	},
}

// buildKey joins prefix and suffix into a pooled buffer for lookups.
// Callers must call releaseKey when done with the key, and must not pass it
// to txn.Set or txn.Delete.
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	return append(buf, suffix...)
}

// buildIndexKey returns prefix + "idx:" + name + ":" + value + sep + id.
// The slice is freshly allocated: Badger keeps written keys until commit.
func buildIndexKey(prefix, name, value, id string) []byte {
	buf := make([]byte, 0, len(prefix)+len(indexMarker)+len(name)+len(value)+len(id)+2)
	buf = append(buf, prefix...)
	buf = append(buf, indexMarker...)
	buf = append(buf, name...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	buf = append(buf, indexSep)
	return append(buf, id...)
}

// indexScanPrefix is the key prefix covering every index key whose value
// starts with valuePrefix.
func indexScanPrefix(prefix, name, valuePrefix string) []byte {
	return []byte(prefix + indexMarker + name + ":" + valuePrefix)
}

// idFromIndexKey extracts the record id from an index key.
func idFromIndexKey(key []byte) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == indexSep {
			return string(key[i+1:])
		}
	}
	return ""
}

func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

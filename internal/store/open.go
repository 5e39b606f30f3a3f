package store

// KV is the key/value contract shared by every store.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Close() error
}

// Open returns a SQLite store at path, or a Memory store when path is
// empty. If the database cannot be opened it still returns a usable
// Memory store together with the error.
func Open(path string) (KV, error) {
	if path == "" {
		return NewMemory(), nil
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return NewMemory(), err
	}
	return db, nil
}

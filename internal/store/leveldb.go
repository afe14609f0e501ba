package store

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB is a Backend over github.com/syndtr/goleveldb, letting a
// verifying node persist the queued solution across restarts within a
// round. ChainCore's own storage.LevelDB declared this dependency but
// never opened a handle with it; this type completes that wiring for the
// verifier's own storage needs.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (creating if necessary) a LevelDB database rooted at
// dataDir.
func NewLevelDB(dataDir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dataDir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

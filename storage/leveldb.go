package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB is a Store backed by an embedded LevelDB database on disk.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if needed) a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (s *LevelDB) Get(key string) ([]byte, error) {
	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *LevelDB) Put(key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

func (s *LevelDB) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}

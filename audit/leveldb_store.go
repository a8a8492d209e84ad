package audit

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type LevelDBStoreOptions struct {
	// Path 数据库目录
	Path string `cfg:"path" def:"data/audit.leveldb" validate:"required"`

	// Sync 每次写入都落盘
	Sync bool `cfg:"sync" def:"true"`
}

type LevelDBStore struct {
	db           *leveldb.DB
	serializer   Serializer[Entry]
	writeOptions *opt.WriteOptions
}

func NewLevelDBStoreWithOptions(options *LevelDBStoreOptions, serializer Serializer[Entry]) (*LevelDBStore, error) {
	if options == nil || options.Path == "" {
		return nil, errors.New("leveldb path is required")
	}
	if serializer == nil {
		serializer = &MsgPackSerializer[Entry]{}
	}

	if err := os.MkdirAll(options.Path, 0755); err != nil {
		return nil, errors.Wrapf(err, "os.MkdirAll failed. directory: %s", options.Path)
	}

	db, err := leveldb.OpenFile(options.Path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "leveldb.OpenFile failed. path: "+options.Path)
	}

	return &LevelDBStore{
		db:           db,
		serializer:   serializer,
		writeOptions: &opt.WriteOptions{Sync: options.Sync},
	}, nil
}

func (s *LevelDBStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	buf, err := marshalEntry(s.serializer, entry)
	if err != nil {
		return err
	}
	if err := s.db.Put(encodeKey(entry.ID), buf, s.writeOptions); err != nil {
		return errors.Wrap(err, "leveldb.Put failed")
	}
	return nil
}

func (s *LevelDBStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	result := make([]*Entry, 0, n)
	for ok := iter.Last(); ok && len(result) < n; ok = iter.Prev() {
		entry, err := unmarshalEntry(s.serializer, iter.Value())
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "leveldb iterator failed")
	}
	return result, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

package audit

import (
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

type PebbleStoreOptions struct {
	// Path 数据库目录
	Path string `cfg:"path" def:"data/audit.pebble" validate:"required"`

	// NoSync 写入时不等待 WAL 落盘
	NoSync bool `cfg:"noSync"`
}

type PebbleStore struct {
	db           *pebble.DB
	serializer   Serializer[Entry]
	writeOptions *pebble.WriteOptions
}

func NewPebbleStoreWithOptions(options *PebbleStoreOptions, serializer Serializer[Entry]) (*PebbleStore, error) {
	if options == nil || options.Path == "" {
		return nil, errors.New("pebble path is required")
	}
	if serializer == nil {
		serializer = &MsgPackSerializer[Entry]{}
	}

	db, err := pebble.Open(options.Path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "pebble.Open failed")
	}

	writeOptions := pebble.Sync
	if options.NoSync {
		writeOptions = pebble.NoSync
	}

	return &PebbleStore{
		db:           db,
		serializer:   serializer,
		writeOptions: writeOptions,
	}, nil
}

func (s *PebbleStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	buf, err := marshalEntry(s.serializer, entry)
	if err != nil {
		return err
	}
	if err := s.db.Set(encodeKey(entry.ID), buf, s.writeOptions); err != nil {
		return errors.Wrap(err, "pebble.Set failed")
	}
	return nil
}

func (s *PebbleStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "pebble.NewIter failed")
	}
	defer iter.Close()

	result := make([]*Entry, 0, n)
	for ok := iter.Last(); ok && len(result) < n; ok = iter.Prev() {
		entry, err := unmarshalEntry(s.serializer, iter.Value())
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "pebble iterator failed")
	}
	return result, nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

package audit

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type BoltStoreOptions struct {
	// Path 数据库文件路径，目录不存在时自动创建
	Path string `cfg:"path" def:"data/audit.db" validate:"required"`

	BucketName string `cfg:"bucketName" def:"audit"`

	// Timeout 获取文件锁的等待时间，0 表示一直等待
	Timeout time.Duration `cfg:"timeout" def:"1s"`

	NoSync bool `cfg:"noSync"`
}

type BoltStore struct {
	db         *bolt.DB
	serializer Serializer[Entry]
	bucketName []byte
}

func NewBoltStoreWithOptions(options *BoltStoreOptions, serializer Serializer[Entry]) (*BoltStore, error) {
	if options == nil || options.Path == "" {
		return nil, errors.New("bolt path is required")
	}
	if serializer == nil {
		serializer = &MsgPackSerializer[Entry]{}
	}

	directory := filepath.Dir(options.Path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrapf(err, "os.MkdirAll failed. directory: %s", directory)
	}

	db, err := bolt.Open(options.Path, 0644, &bolt.Options{
		Timeout: options.Timeout,
		NoSync:  options.NoSync,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bolt.Open failed. path: %s", options.Path)
	}

	bucketName := []byte(options.BucketName)
	if len(bucketName) == 0 {
		bucketName = []byte("audit")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create bucket failed")
	}

	return &BoltStore{
		db:         db,
		serializer: serializer,
		bucketName: bucketName,
	}, nil
}

func (s *BoltStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	buf, err := marshalEntry(s.serializer, entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucketName).Put(encodeKey(entry.ID), buf)
	})
}

func (s *BoltStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	result := make([]*Entry, 0, n)
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(s.bucketName).Cursor()
		for k, v := cursor.Last(); k != nil && len(result) < n; k, v = cursor.Prev() {
			entry, err := unmarshalEntry(s.serializer, v)
			if err != nil {
				return err
			}
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

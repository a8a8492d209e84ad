// Package audit 记录每一次自定义 SQL 的执行，支持内存、bolt、leveldb、pebble、redis 和 gorm 后端
package audit

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/hatlonely/hms/uid"
	"github.com/pkg/errors"
)

// Entry 一次自定义 SQL 执行
type Entry struct {
	ID         int64     `json:"id" bson:"id" msgpack:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Time       time.Time `json:"time" bson:"time" msgpack:"time" gorm:"column:time;index"`
	Operator   string    `json:"operator" bson:"operator" msgpack:"operator" gorm:"column:operator;size:64"`
	SQL        string    `json:"sql" bson:"sql" msgpack:"sql" gorm:"column:sql;type:text"`
	Mode       string    `json:"mode" bson:"mode" msgpack:"mode" gorm:"column:mode;size:16"`
	Rows       int64     `json:"rows" bson:"rows" msgpack:"rows" gorm:"column:rows"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty" msgpack:"error,omitempty" gorm:"column:error;type:text"`
	DurationMs int64     `json:"durationMs" bson:"durationMs" msgpack:"durationMs" gorm:"column:duration_ms"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

// Store 审计存储。Recent 按 id 从新到旧返回最多 n 条
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, n int) ([]*Entry, error)
	Close() error
}

type Options struct {
	// Type 后端类型
	Type string `cfg:"type" def:"bolt" validate:"oneof=memory bolt leveldb pebble redis gorm"`

	// Serializer 字节型后端的编码方式
	Serializer string `cfg:"serializer" def:"msgpack" validate:"oneof=msgpack bson json"`

	Memory  MemoryStoreOptions  `cfg:"memory"`
	Bolt    BoltStoreOptions    `cfg:"bolt"`
	LevelDB LevelDBStoreOptions `cfg:"leveldb"`
	Pebble  PebbleStoreOptions  `cfg:"pebble"`
	Redis   RedisStoreOptions   `cfg:"redis"`
	Gorm    GormStoreOptions    `cfg:"gorm"`

	ID uid.Options `cfg:"id"`
}

var ErrInvalidEntry = errors.New("invalid audit entry")

// NewStoreWithOptions 按 Type 创建后端，并包装成自动分配 id 和时间的 Trail
func NewStoreWithOptions(options *Options) (*Trail, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	generator, err := uid.NewIntGeneratorWithOptions(&options.ID)
	if err != nil {
		return nil, errors.WithMessage(err, "uid.NewIntGeneratorWithOptions failed")
	}

	s, err := newStore(options)
	if err != nil {
		return nil, err
	}

	return NewTrail(s, generator), nil
}

func newStore(options *Options) (Store, error) {
	switch options.Type {
	case "memory":
		return NewMemoryStoreWithOptions(&options.Memory), nil
	case "gorm":
		return NewGormStoreWithOptions(&options.Gorm)
	}

	serializer, err := NewSerializer(options.Serializer)
	if err != nil {
		return nil, err
	}

	switch options.Type {
	case "", "bolt":
		return NewBoltStoreWithOptions(&options.Bolt, serializer)
	case "leveldb":
		return NewLevelDBStoreWithOptions(&options.LevelDB, serializer)
	case "pebble":
		return NewPebbleStoreWithOptions(&options.Pebble, serializer)
	case "redis":
		return NewRedisStoreWithOptions(&options.Redis, serializer)
	default:
		return nil, errors.Errorf("unsupported audit store type: %s", options.Type)
	}
}

// Trail 为缺少 id 和时间的记录补齐后写入底层存储
type Trail struct {
	store     Store
	generator uid.IntGenerator
	now       func() time.Time
}

func NewTrail(store Store, generator uid.IntGenerator) *Trail {
	return &Trail{store: store, generator: generator, now: time.Now}
}

func (t *Trail) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.Wrap(ErrInvalidEntry, "entry is nil")
	}
	if entry.ID == 0 {
		entry.ID = t.generator.Generate()
	}
	if entry.Time.IsZero() {
		entry.Time = t.now()
	}
	return t.store.Append(ctx, entry)
}

func (t *Trail) Recent(ctx context.Context, n int) ([]*Entry, error) {
	if n <= 0 {
		return []*Entry{}, nil
	}
	return t.store.Recent(ctx, n)
}

func (t *Trail) Close() error {
	if closer, ok := t.generator.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return t.store.Close()
}

// encodeKey 大端编码，字节序与 id 大小顺序一致
func encodeKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func checkEntry(entry *Entry) error {
	if entry == nil {
		return errors.Wrap(ErrInvalidEntry, "entry is nil")
	}
	if entry.ID <= 0 {
		return errors.Wrapf(ErrInvalidEntry, "id must be positive, got %d", entry.ID)
	}
	return nil
}

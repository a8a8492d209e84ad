package audit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStoreOptions struct {
	// host:port 地址。
	Endpoint string `cfg:"endpoint" def:"localhost:6379"`

	Username string `cfg:"username"`
	Password string `cfg:"password"`
	DB       int    `cfg:"db"`

	// Key 审计列表的键名，最新的记录在表头
	Key string `cfg:"key" def:"hms:audit"`

	// Capacity 列表最大长度，超出部分被 LTRIM 截掉
	Capacity int `cfg:"capacity" def:"1000" validate:"gte=0"`

	DialTimeout time.Duration `cfg:"dialTimeout" def:"5s"`
}

type RedisStore struct {
	client     *redis.Client
	serializer Serializer[Entry]
	key        string
	capacity   int64
}

func NewRedisStoreWithOptions(options *RedisStoreOptions, serializer Serializer[Entry]) (*RedisStore, error) {
	if options == nil || options.Endpoint == "" {
		return nil, errors.New("redis endpoint is required")
	}
	if serializer == nil {
		serializer = &MsgPackSerializer[Entry]{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:        options.Endpoint,
		Username:    options.Username,
		Password:    options.Password,
		DB:          options.DB,
		DialTimeout: options.DialTimeout,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WithMessage(err, "redis.client.Ping failed")
	}

	key := options.Key
	if key == "" {
		key = "hms:audit"
	}
	capacity := int64(options.Capacity)
	if capacity <= 0 {
		capacity = 1000
	}

	return &RedisStore{
		client:     client,
		serializer: serializer,
		key:        key,
		capacity:   capacity,
	}, nil
}

func (s *RedisStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	buf, err := marshalEntry(s.serializer, entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, buf)
	pipe.LTrim(ctx, s.key, 0, s.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "redis append failed")
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	values, err := s.client.LRange(ctx, s.key, 0, int64(n)-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis.LRange failed")
	}

	result := make([]*Entry, 0, len(values))
	for _, value := range values {
		entry, err := unmarshalEntry(s.serializer, []byte(value))
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

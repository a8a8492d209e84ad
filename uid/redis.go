package uid

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Endpoint string        `cfg:"endpoint" def:"localhost:6379"`
	Password string        `cfg:"password"`
	DB       int           `cfg:"db"`
	KeyName  string        `cfg:"keyName" def:"hms:uid"`
	Timeout  time.Duration `cfg:"timeout" def:"3s"`
}

// RedisGenerator 高52位毫秒时间戳 + 低12位序列号，序列号由 INCR 分配，多个进程共享同一个 key 时不会重复
type RedisGenerator struct {
	client  *redis.Client
	keyName string
	timeout time.Duration
}

func NewRedisGeneratorWithOptions(options *RedisOptions) (*RedisGenerator, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	keyName := options.KeyName
	if keyName == "" {
		keyName = "hms:uid"
	}
	timeout := options.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Endpoint,
		Password: options.Password,
		DB:       options.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis.client.Ping failed")
	}

	return &RedisGenerator{
		client:  client,
		keyName: keyName,
		timeout: timeout,
	}, nil
}

// Generate redis 不可用时退化为序列号为 0 的本地时间戳
func (g *RedisGenerator) Generate() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	for {
		timestamp := time.Now().UnixMilli()
		key := g.keyName + ":" + strconv.FormatInt(timestamp, 10)

		sequence, err := g.client.Incr(ctx, key).Result()
		if err != nil {
			return timestamp << sequenceBits
		}
		if sequence == 1 {
			g.client.Expire(ctx, key, 2*time.Second)
		}

		// 当前毫秒的序列号用完，等下一毫秒
		if sequence > maxSequence+1 {
			time.Sleep(time.Millisecond)
			continue
		}

		return timestamp<<sequenceBits | (sequence - 1)
	}
}

func (g *RedisGenerator) Close() error {
	return g.client.Close()
}

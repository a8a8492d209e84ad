// Package uid 为审计记录生成 64 位整数 id，同一个生成器产生的 id 单调递增
package uid

import (
	"github.com/pkg/errors"
)

// IntGenerator 生成64位整数UID的接口
type IntGenerator interface {
	Generate() int64
}

type Options struct {
	// Type 生成器类型，snowflake 或 redis
	Type string `cfg:"type" def:"snowflake" validate:"oneof=snowflake redis"`

	Snowflake SnowflakeOptions `cfg:"snowflake"`
	Redis     RedisOptions     `cfg:"redis"`
}

// NewIntGeneratorWithOptions 创建整数生成器，options 为 nil 时使用 snowflake
func NewIntGeneratorWithOptions(options *Options) (IntGenerator, error) {
	if options == nil {
		return NewSnowflakeGenerator(nil), nil
	}

	switch options.Type {
	case "", "snowflake":
		return NewSnowflakeGenerator(&options.Snowflake), nil
	case "redis":
		generator, err := NewRedisGeneratorWithOptions(&options.Redis)
		if err != nil {
			return nil, errors.WithMessage(err, "NewRedisGeneratorWithOptions failed")
		}
		return generator, nil
	default:
		return nil, errors.Errorf("unsupported generator type: %s", options.Type)
	}
}

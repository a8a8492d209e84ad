// Package cfg 加载配置文件到带 cfg/def/validate 标签的结构体。
//
// 加载顺序：
//  1. 按扩展名解码配置文件（yaml/json/toml/ini/.env）
//  2. 用环境变量覆盖文件中的值，别名优先级低于带前缀的变量
//  3. 按 cfg 标签（大小写不敏感）转换到结构体
//  4. def 标签填充零值字段
//  5. validate 标签校验
package cfg

import (
	"os"
	"reflect"

	"github.com/hatlonely/hms/cfg/decoder"
	"github.com/pkg/errors"
)

type Options struct {
	// Path 配置文件路径，为空时只读取环境变量
	Path string

	// EnvPrefix 环境变量前缀，例如 HMS 对应 HMS_DATABASE_HOST，为空时不读取环境变量
	EnvPrefix string

	// EnvAliases 额外的环境变量名到配置路径的映射，例如 DB_HOST -> database.host
	EnvAliases map[string]string
}

// Load 使用 HMS 前缀加载配置
func Load(path string, object any) error {
	return LoadWithOptions(&Options{Path: path, EnvPrefix: "HMS"}, object)
}

func LoadWithOptions(options *Options, object any) error {
	if options == nil {
		return errors.New("options is nil")
	}
	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("object must be a non-nil pointer to struct, got %T", object)
	}
	rt := rv.Elem().Type()

	data := map[string]any{}
	if options.Path != "" {
		content, err := os.ReadFile(options.Path)
		if err != nil {
			return errors.Wrapf(err, "read config file %s failed", options.Path)
		}
		d, err := decoder.NewDecoderForFile(options.Path)
		if err != nil {
			return err
		}
		decoded, err := d.Decode(content)
		if err != nil {
			return errors.WithMessagef(err, "decode %s failed", options.Path)
		}
		if _, ok := d.(decoder.FlatDecoder); ok {
			decoded = expand(rt, func(key string) (string, bool) {
				v, ok := decoded[key]
				if !ok {
					return "", false
				}
				s, ok := v.(string)
				return s, ok
			})
		}
		data = decoded
	}

	for env, path := range options.EnvAliases {
		if value, ok := os.LookupEnv(env); ok {
			setPath(data, splitPath(path), value)
		}
	}
	if options.EnvPrefix != "" {
		merge(data, expand(rt, func(key string) (string, bool) {
			return os.LookupEnv(options.EnvPrefix + "_" + key)
		}))
	}

	if err := Convert(data, object); err != nil {
		return errors.WithMessage(err, "convert config failed")
	}
	if err := SetDefaults(object); err != nil {
		return errors.WithMessage(err, "set defaults failed")
	}
	if err := Validate(object); err != nil {
		return errors.WithMessage(err, "validate config failed")
	}
	return nil
}

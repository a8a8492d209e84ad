// Package decoder 把配置文件内容解码成嵌套的 map
package decoder

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Decoder 配置数据解码器
type Decoder interface {
	Decode(data []byte) (map[string]any, error)
}

// FlatDecoder 解码结果的键是 A_B_C 形式的扁平路径，需要对照目标结构体展开
type FlatDecoder interface {
	Decoder
	Flat()
}

// NewDecoderForFile 按扩展名选择解码器
func NewDecoderForFile(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" && strings.HasPrefix(filepath.Base(path), ".env") {
		ext = ".env"
	}

	switch ext {
	case ".yaml", ".yml":
		return NewYamlDecoder(), nil
	case ".json":
		return NewJsonDecoder(), nil
	case ".toml":
		return NewTomlDecoder(), nil
	case ".ini":
		return NewIniDecoder(), nil
	case ".env":
		return NewEnvDecoder(), nil
	default:
		return nil, errors.Errorf("unsupported config format: %q", path)
	}
}

package decoder

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// EnvDecoder .env 文件，键统一转成大写
type EnvDecoder struct{}

func NewEnvDecoder() *EnvDecoder {
	return &EnvDecoder{}
}

func (e *EnvDecoder) Flat() {}

func (e *EnvDecoder) Decode(data []byte) (map[string]any, error) {
	kvs, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode .env")
	}

	result := make(map[string]any, len(kvs))
	for key, value := range kvs {
		result[strings.ToUpper(key)] = value
	}
	return result, nil
}

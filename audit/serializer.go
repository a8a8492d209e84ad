package audit

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// Serializer 字节型后端使用的编码
type Serializer[T any] interface {
	Serialize(from T) ([]byte, error)
	Deserialize(to []byte) (T, error)
}

type MsgPackSerializer[T any] struct{}

func (s *MsgPackSerializer[T]) Serialize(from T) ([]byte, error) {
	return msgpack.Marshal(from)
}

func (s *MsgPackSerializer[T]) Deserialize(to []byte) (T, error) {
	var result T
	err := msgpack.Unmarshal(to, &result)
	return result, err
}

type BSONSerializer[T any] struct{}

func (s *BSONSerializer[T]) Serialize(from T) ([]byte, error) {
	return bson.Marshal(from)
}

func (s *BSONSerializer[T]) Deserialize(to []byte) (T, error) {
	var result T
	err := bson.Unmarshal(to, &result)
	return result, err
}

type JSONSerializer[T any] struct{}

func (s *JSONSerializer[T]) Serialize(from T) ([]byte, error) {
	return json.Marshal(from)
}

func (s *JSONSerializer[T]) Deserialize(to []byte) (T, error) {
	var result T
	err := json.Unmarshal(to, &result)
	return result, err
}

// NewSerializer 按名字创建 Entry 的编码器，空名字使用 msgpack
func NewSerializer(name string) (Serializer[Entry], error) {
	switch name {
	case "", "msgpack":
		return &MsgPackSerializer[Entry]{}, nil
	case "bson":
		return &BSONSerializer[Entry]{}, nil
	case "json":
		return &JSONSerializer[Entry]{}, nil
	default:
		return nil, errors.Errorf("unsupported serializer: %s", name)
	}
}

func marshalEntry(serializer Serializer[Entry], entry *Entry) ([]byte, error) {
	buf, err := serializer.Serialize(*entry)
	if err != nil {
		return nil, errors.Wrapf(err, "serialize entry %d failed", entry.ID)
	}
	return buf, nil
}

func unmarshalEntry(serializer Serializer[Entry], buf []byte) (*Entry, error) {
	entry, err := serializer.Deserialize(buf)
	if err != nil {
		return nil, errors.Wrap(err, "deserialize entry failed")
	}
	return &entry, nil
}

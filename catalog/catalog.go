package catalog

import (
	"reflect"

	"github.com/pkg/errors"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownColumn = errors.New("unknown column")
)

// FieldType 字段类型，决定表单解析方式和建表时的列类型
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInt      FieldType = "int"
	FieldTypeDecimal  FieldType = "decimal"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDate     FieldType = "date"
	FieldTypeTime     FieldType = "time"
	FieldTypeDatetime FieldType = "datetime"
)

// Field 可编辑字段定义
type Field struct {
	Name     string
	Type     FieldType
	Size     int
	Rule     string // validator 规则
	Norm     string // 校验前的规范化方式：capitalize, upper, clock
	Required bool
	Nullable bool
	Unique   bool
	Default  string

	index int
}

// ForeignKey 外键定义
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// EntitySchema 实体定义
// Fields 的顺序即 INSERT/UPDATE 的参数绑定顺序，主键不在 Fields 中
type EntitySchema struct {
	Name        string
	PrimaryKey  string
	Fields      []Field
	Generated   []Field    // 由数据库填充的只读列
	Uniques     [][]string // 复合唯一约束
	ForeignKeys []ForeignKey

	recordType reflect.Type
	pkIndex    int
}

// FieldNames 按绑定顺序返回字段名
func (s *EntitySchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Field 按列名查找可编辑字段
func (s *EntitySchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasColumn 判断列是否属于该实体（包括主键和只读列）
func (s *EntitySchema) HasColumn(name string) bool {
	if name == s.PrimaryKey {
		return true
	}
	if _, ok := s.Field(name); ok {
		return true
	}
	for _, f := range s.Generated {
		if f.Name == name {
			return true
		}
	}
	return false
}

type entry struct {
	schema *EntitySchema
	create func() Record
}

var (
	entities []string
	registry = map[string]*entry{}
)

func register[T any, P interface {
	*T
	Record
}]() {
	var zero T
	schema, err := schemaFromType(reflect.TypeOf(zero))
	if err != nil {
		panic(err)
	}
	if _, ok := registry[schema.Name]; ok {
		panic("catalog: duplicate entity " + schema.Name)
	}
	registry[schema.Name] = &entry{
		schema: schema,
		create: func() Record { return P(new(T)) },
	}
	entities = append(entities, schema.Name)
}

func init() {
	register[HospitalBranch]()
	register[Patient]()
	register[Department]()
	register[Doctor]()
	register[Nurse]()
	register[Appointment]()
	register[MedicalRecord]()
	register[Room]()
	register[HospitalStay]()
	register[Billing]()
}

// Lookup 返回实体定义，返回值只读
func Lookup(entity string) (*EntitySchema, error) {
	e, ok := registry[entity]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "entity %q", entity)
	}
	return e.schema, nil
}

// Entities 按依赖顺序返回全部实体名，被引用的表在前
func Entities() []string {
	out := make([]string, len(entities))
	copy(out, entities)
	return out
}

// PrimaryKeys 返回实体名到主键列的映射
func PrimaryKeys() map[string]string {
	m := make(map[string]string, len(registry))
	for name, e := range registry {
		m[name] = e.schema.PrimaryKey
	}
	return m
}

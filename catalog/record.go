package catalog

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Record 强类型的实体记录，只有通过校验的记录才会交给语句构建器
type Record interface {
	Entity() string
}

// New 返回实体对应的空记录
func New(entity string) (Record, error) {
	e, ok := registry[entity]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "entity %q", entity)
	}
	return e.create(), nil
}

// NewRecord 将表单原始文本解析为强类型记录
// 解析、规范化、校验全部通过才返回记录，否则返回 *ValidationError
func NewRecord(entity string, form map[string]string) (Record, error) {
	e, ok := registry[entity]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "entity %q", entity)
	}

	record := e.create()
	rv := reflect.ValueOf(record).Elem()
	ve := &ValidationError{Entity: entity}

	var unknown []string
	for key := range form {
		if _, ok := e.schema.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		ve.add(key, "field", "is not an editable field of "+entity)
	}

	for _, field := range e.schema.Fields {
		raw := strings.TrimSpace(form[field.Name])
		if err := setField(rv.Field(field.index), field, raw); err != nil {
			ve.add(field.Name, "parse", err.Error())
		}
	}
	if len(ve.Fields) > 0 {
		return nil, ve
	}

	if err := ValidateRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckField 按表单规则解析并校验单个字段，用于输入时逐项提示
// 跨字段规则（如出院日期）只在整条记录提交时检查
func CheckField(entity string, column string, raw string) error {
	e, ok := registry[entity]
	if !ok {
		return errors.Wrapf(ErrUnknownEntity, "entity %q", entity)
	}
	field, ok := e.schema.Field(column)
	if !ok {
		return errors.Wrapf(ErrUnknownColumn, "%s.%s", entity, column)
	}

	fv := reflect.ValueOf(e.create()).Elem().Field(field.index)
	if err := setField(fv, field, strings.TrimSpace(raw)); err != nil {
		ve := &ValidationError{Entity: entity}
		ve.add(field.Name, "parse", err.Error())
		return ve
	}
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			fv = reflect.Zero(fv.Type().Elem())
		} else {
			fv = fv.Elem()
		}
	}

	err := ValidateValue(field, fv.Interface())
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Entity = entity
	}
	return err
}

// SchemaOf 返回记录所属实体的定义
func SchemaOf(record Record) (*EntitySchema, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}
	return Lookup(record.Entity())
}

// Values 按 Fields 顺序返回记录的值，空指针对应 NULL
func Values(record Record) ([]any, error) {
	schema, err := SchemaOf(record)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Type() != schema.recordType {
		return nil, errors.Errorf("record type %T does not match entity %s", record, schema.Name)
	}
	rv = rv.Elem()

	values := make([]any, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		fv := rv.Field(field.index)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				values = append(values, nil)
				continue
			}
			fv = fv.Elem()
		}
		values = append(values, fv.Interface())
	}
	return values, nil
}

func setField(fv reflect.Value, field Field, raw string) error {
	if raw == "" {
		// 缺失值保持零值，由 required/gt/min 规则给出提示
		return nil
	}
	if fv.Kind() == reflect.Ptr {
		fv.Set(reflect.New(fv.Type().Elem()))
		fv = fv.Elem()
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(normalize(field.Norm, raw))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return errors.New("must be an integer")
		}
		fv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return errors.New("must be a decimal number")
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return errors.New("must be a finite decimal number")
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	default:
		return errors.Errorf("unsupported field kind %v", fv.Kind())
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "available":
		return true, nil
	case "no", "n", "unavailable":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("must be true or false")
	}
	return b, nil
}

func normalize(norm, s string) string {
	switch norm {
	case "capitalize":
		return capitalize(s)
	case "upper":
		return strings.ToUpper(s)
	case "clock":
		// HH:MM 补齐秒
		if len(s) == 5 && s[2] == ':' {
			return s + ":00"
		}
	}
	return s
}

// capitalize 首字母大写，其余小写
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

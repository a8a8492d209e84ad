package cfg

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// Convert 把解码后的 map 转换到结构体，字段名取 cfg 标签，匹配时忽略大小写
func Convert(src map[string]any, object any) error {
	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("object must be a non-nil pointer")
	}
	return convertValue(src, rv.Elem(), "")
}

func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("cfg"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return field.Name
}

func convertValue(src any, dst reflect.Value, path string) error {
	if src == nil {
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return convertValue(src, dst.Elem(), path)
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) && dst.Kind() != reflect.Map && dst.Kind() != reflect.Slice {
		dst.Set(sv)
		return nil
	}

	switch dst.Type() {
	case durationType:
		return wrapPath(convertDuration(src, dst), path)
	case timeType:
		return wrapPath(convertTime(src, dst), path)
	}

	switch dst.Kind() {
	case reflect.Struct:
		m, ok := src.(map[string]any)
		if !ok {
			return errors.Errorf("%s: expected a map, got %T", path, src)
		}
		return convertStruct(m, dst, path)
	case reflect.Map:
		return convertMap(sv, dst, path)
	case reflect.Slice:
		return convertSlice(src, dst, path)
	case reflect.Interface:
		if dst.Type().NumMethod() == 0 {
			dst.Set(sv)
			return nil
		}
	}

	return wrapPath(convertScalar(src, dst), path)
}

func wrapPath(err error, path string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, path)
}

func convertStruct(src map[string]any, dst reflect.Value, path string) error {
	rt := dst.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "-" {
			continue
		}

		key := findKey(src, name)
		value, ok := src[key]
		if !ok {
			continue
		}
		if err := convertValue(value, dst.Field(i), strings.TrimPrefix(path+"."+name, ".")); err != nil {
			return err
		}
	}
	return nil
}

func convertMap(src reflect.Value, dst reflect.Value, path string) error {
	if src.Kind() != reflect.Map {
		return errors.Errorf("%s: expected a map, got %v", path, src.Type())
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMap(dst.Type()))
	}
	for _, key := range src.MapKeys() {
		value := reflect.New(dst.Type().Elem()).Elem()
		if err := convertValue(src.MapIndex(key).Interface(), value, fmt.Sprintf("%s.%v", path, key.Interface())); err != nil {
			return err
		}
		k := reflect.New(dst.Type().Key()).Elem()
		if err := convertScalar(key.Interface(), k); err != nil {
			return wrapPath(err, path)
		}
		dst.SetMapIndex(k, value)
	}
	return nil
}

// convertSlice 字符串按逗号拆分，方便环境变量表达列表
func convertSlice(src any, dst reflect.Value, path string) error {
	if s, ok := src.(string); ok {
		parts := []any{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		src = parts
	}

	sv := reflect.ValueOf(src)
	if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
		return errors.Errorf("%s: expected a list, got %T", path, src)
	}
	slice := reflect.MakeSlice(dst.Type(), sv.Len(), sv.Len())
	for i := 0; i < sv.Len(); i++ {
		if err := convertValue(sv.Index(i).Interface(), slice.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	dst.Set(slice)
	return nil
}

func convertScalar(src any, dst reflect.Value) error {
	if n, ok := src.(json.Number); ok {
		src = n.String()
	}

	if s, ok := src.(string); ok {
		s = strings.TrimSpace(s)
		switch dst.Kind() {
		case reflect.String:
			dst.SetString(s)
		case reflect.Bool:
			v, err := strconv.ParseBool(s)
			if err != nil {
				return errors.Wrapf(err, "invalid bool %q", s)
			}
			dst.SetBool(v)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, err := strconv.ParseInt(s, 0, dst.Type().Bits())
			if err != nil {
				return errors.Wrapf(err, "invalid int %q", s)
			}
			dst.SetInt(v)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v, err := strconv.ParseUint(s, 0, dst.Type().Bits())
			if err != nil {
				return errors.Wrapf(err, "invalid uint %q", s)
			}
			dst.SetUint(v)
		case reflect.Float32, reflect.Float64:
			v, err := strconv.ParseFloat(s, dst.Type().Bits())
			if err != nil {
				return errors.Wrapf(err, "invalid float %q", s)
			}
			dst.SetFloat(v)
		default:
			return errors.Errorf("cannot convert string to %v", dst.Type())
		}
		return nil
	}

	sv := reflect.ValueOf(src)
	if dst.Kind() == reflect.String {
		dst.SetString(fmt.Sprint(src))
		return nil
	}
	if isNumber(sv.Kind()) && isNumber(dst.Kind()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	if sv.Type().ConvertibleTo(dst.Type()) && sv.Kind() == dst.Kind() {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return errors.Errorf("cannot convert %v to %v", sv.Type(), dst.Type())
}

func isNumber(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertDuration 字符串按 time.ParseDuration 解析，整数视为纳秒，浮点数视为秒
func convertDuration(src any, dst reflect.Value) error {
	if n, ok := src.(json.Number); ok {
		src = n.String()
	}

	sv := reflect.ValueOf(src)
	switch sv.Kind() {
	case reflect.String:
		s := strings.TrimSpace(sv.String())
		d, err := time.ParseDuration(s)
		if err != nil {
			n, numErr := strconv.ParseInt(s, 10, 64)
			if numErr != nil {
				return errors.Wrapf(err, "invalid duration %q", s)
			}
			d = time.Duration(n)
		}
		dst.SetInt(int64(d))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(sv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetInt(int64(sv.Uint()))
	case reflect.Float32, reflect.Float64:
		dst.SetInt(int64(sv.Float() * float64(time.Second)))
	default:
		return errors.Errorf("cannot convert %T to time.Duration", src)
	}
	return nil
}

var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func convertTime(src any, dst reflect.Value) error {
	s, ok := src.(string)
	if !ok {
		return errors.Errorf("cannot convert %T to time.Time", src)
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return errors.Errorf("invalid time %q", s)
}

package cfg

import (
	"reflect"

	"github.com/pkg/errors"
)

// SetDefaults 用 def 标签填充仍为零值的字段。
// def 的文本按配置文件中的字符串值解析，因此 "30m"、"a, b" 这类写法和文件里一致。
// 只看零值，布尔字段的 def:"true" 无法再被配置成 false。
func SetDefaults(object any) error {
	rv := reflect.ValueOf(object)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("object must be a non-nil pointer, got %T", object)
	}
	return fillDefaults(rv.Elem(), "")
}

// fillDefaults nil 指针表示整段配置缺省，不会为它分配对象
func fillDefaults(rv reflect.Value, path string) error {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.Type() == timeType {
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		fieldPath := joinPath(path, fieldName(field))

		if err := fillDefaults(fv, fieldPath); err != nil {
			return err
		}

		def, ok := field.Tag.Lookup("def")
		if !ok || !fv.IsZero() {
			continue
		}
		if err := convertValue(def, fv, fieldPath); err != nil {
			return errors.WithMessagef(err, "invalid def tag on %s", fieldPath)
		}
	}
	return nil
}

func joinPath(parent string, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

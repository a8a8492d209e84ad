package catalog

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// schemaFromType 从记录结构体构建实体定义
// 支持的 tag 格式：
//   - `table:"Patient"` 标注在 `_ struct{}` 字段上，指定表名
//   - `rdb:"Column,type=date,size=50,primary,unique,unique=uq_name,ref=Table.Column,default=X,readonly"`
//   - `validate:"..."` go-playground validator 规则
//   - `norm:"capitalize|upper|clock"` 校验前的规范化方式
func schemaFromType(rt reflect.Type) (*EntitySchema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %v", rt)
	}

	schema := &EntitySchema{pkIndex: -1, recordType: rt}
	groups := map[string][]string{}
	var groupOrder []string

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if table := sf.Tag.Get("table"); table != "" {
			schema.Name = table
			continue
		}
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("rdb")
		if tag == "" || tag == "-" {
			continue
		}

		field, opts, err := parseFieldTag(sf, tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v", rt.Name(), sf.Name, err)
		}
		field.index = i

		if opts.primary {
			if schema.pkIndex >= 0 {
				return nil, fmt.Errorf("%s: composite primary keys are not supported", rt.Name())
			}
			schema.PrimaryKey = field.Name
			schema.pkIndex = i
			continue
		}
		if opts.ref != "" {
			parts := strings.SplitN(opts.ref, ".", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("%s.%s: invalid ref %q", rt.Name(), sf.Name, opts.ref)
			}
			schema.ForeignKeys = append(schema.ForeignKeys, ForeignKey{
				Column: field.Name, RefTable: parts[0], RefColumn: parts[1],
			})
		}
		if opts.group != "" {
			if _, ok := groups[opts.group]; !ok {
				groupOrder = append(groupOrder, opts.group)
			}
			groups[opts.group] = append(groups[opts.group], field.Name)
		}
		if opts.readonly {
			schema.Generated = append(schema.Generated, field)
			continue
		}
		schema.Fields = append(schema.Fields, field)
	}

	if schema.Name == "" {
		return nil, fmt.Errorf("%s: missing table tag", rt.Name())
	}
	if schema.PrimaryKey == "" {
		return nil, fmt.Errorf("%s: missing primary key", rt.Name())
	}
	for _, g := range groupOrder {
		schema.Uniques = append(schema.Uniques, groups[g])
	}
	return schema, nil
}

type tagOptions struct {
	primary  bool
	readonly bool
	ref      string
	group    string
}

func parseFieldTag(sf reflect.StructField, tag string) (Field, tagOptions, error) {
	var opts tagOptions
	field := Field{
		Name: sf.Name,
		Rule: sf.Tag.Get("validate"),
		Norm: sf.Tag.Get("norm"),
	}

	ft := sf.Type
	if ft.Kind() == reflect.Ptr {
		field.Nullable = true
		ft = ft.Elem()
	}
	field.Type = inferFieldType(ft)
	field.Required = !field.Nullable

	parts := strings.Split(tag, ",")
	if parts[0] != "" && !strings.Contains(parts[0], "=") {
		field.Name = parts[0]
		parts = parts[1:]
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "":
		case "type":
			field.Type = FieldType(value)
		case "size":
			size, err := strconv.Atoi(value)
			if err != nil {
				return field, opts, fmt.Errorf("invalid size %q", value)
			}
			field.Size = size
		case "default":
			field.Default = value
		case "primary":
			opts.primary = true
		case "readonly":
			opts.readonly = true
		case "unique":
			if hasValue {
				opts.group = value
			} else {
				field.Unique = true
			}
		case "ref":
			opts.ref = value
		default:
			return field, opts, fmt.Errorf("unknown tag option %q", key)
		}
	}
	return field, opts, nil
}

func inferFieldType(t reflect.Type) FieldType {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldTypeInt
	case reflect.Float32, reflect.Float64:
		return FieldTypeDecimal
	case reflect.Bool:
		return FieldTypeBool
	default:
		return FieldTypeString
	}
}

package statement

import (
	"fmt"
	"strings"

	"github.com/hatlonely/hms/catalog"
	"github.com/pkg/errors"
)

// primaryKeys 删除语句使用的固定主键表
var primaryKeys = catalog.PrimaryKeys()

// BuildInsert 按 schema.Fields 顺序生成 INSERT 语句和参数
// 记录必须已经通过校验，这里只检查记录与实体是否匹配
func BuildInsert(schema *catalog.EntitySchema, record catalog.Record) (string, []any, error) {
	params, err := recordParams(schema, record)
	if err != nil {
		return "", nil, err
	}

	columns := schema.FieldNames()
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Name, strings.Join(columns, ", "), placeholders(len(columns)))
	return sql, params, nil
}

// BuildUpdate 生成 UPDATE 语句，参数为各字段值加主键
func BuildUpdate(schema *catalog.EntitySchema, pk any, record catalog.Record) (string, []any, error) {
	params, err := recordParams(schema, record)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, 0, len(schema.Fields))
	for _, name := range schema.FieldNames() {
		sets = append(sets, name+" = ?")
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		schema.Name, strings.Join(sets, ", "), schema.PrimaryKey)
	return sql, append(params, pk), nil
}

// BuildDelete 生成按主键删除的语句，实体必须在主键表中
func BuildDelete(entity string, pk any) (string, []any, error) {
	column, ok := primaryKeys[entity]
	if !ok {
		return "", nil, errors.Wrapf(catalog.ErrUnknownEntity, "entity %q", entity)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", entity, column), []any{pk}, nil
}

// BuildSelectByKey 生成单行查询，实体和列都必须来自目录
func BuildSelectByKey(entity string, column string, key any) (string, []any, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return "", nil, err
	}
	if !schema.HasColumn(column) {
		return "", nil, errors.Wrapf(catalog.ErrUnknownColumn, "%s.%s", entity, column)
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", schema.Name, column), []any{key}, nil
}

// BuildSelectAll 生成全表查询，表名只能来自目录
func BuildSelectAll(entity string) (string, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return "", err
	}
	return "SELECT * FROM " + schema.Name, nil
}

func recordParams(schema *catalog.EntitySchema, record catalog.Record) ([]any, error) {
	if schema == nil {
		return nil, errors.New("schema is nil")
	}
	if record == nil {
		return nil, errors.New("record is nil")
	}
	if record.Entity() != schema.Name {
		return nil, errors.Errorf("record of %s cannot be written to %s", record.Entity(), schema.Name)
	}
	return catalog.Values(record)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

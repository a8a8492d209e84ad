package statement

import (
	"fmt"
	"strings"

	"github.com/hatlonely/hms/catalog"
	"github.com/pkg/errors"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

// BuildCreateTable 生成建表语句
func BuildCreateTable(schema *catalog.EntitySchema, dialect string) (string, error) {
	if schema == nil {
		return "", errors.New("schema is nil")
	}
	if dialect != DialectMySQL && dialect != DialectSQLite {
		return "", errors.Errorf("unsupported dialect: %s", dialect)
	}

	var defs []string
	if dialect == DialectSQLite {
		defs = append(defs, schema.PrimaryKey+" INTEGER PRIMARY KEY AUTOINCREMENT")
	} else {
		defs = append(defs, schema.PrimaryKey+" INT AUTO_INCREMENT PRIMARY KEY")
	}

	for _, field := range schema.Fields {
		defs = append(defs, columnDefinition(field, dialect))
	}
	for _, field := range schema.Generated {
		defs = append(defs, columnDefinition(field, dialect))
	}

	for _, field := range schema.Fields {
		if field.Unique {
			defs = append(defs, fmt.Sprintf("UNIQUE (%s)", field.Name))
		}
	}
	for _, group := range schema.Uniques {
		defs = append(defs, fmt.Sprintf("UNIQUE (%s)", strings.Join(group, ", ")))
	}
	for _, fk := range schema.ForeignKeys {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", schema.Name, strings.Join(defs, ",\n  ")), nil
}

// BuildDropTable 生成删表语句
func BuildDropTable(entity string) (string, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS " + schema.Name, nil
}

func columnDefinition(field catalog.Field, dialect string) string {
	parts := []string{field.Name, columnType(field, dialect)}
	if field.Required {
		parts = append(parts, "NOT NULL")
	}
	if field.Default != "" {
		parts = append(parts, "DEFAULT "+formatDefault(field.Default))
	}
	return strings.Join(parts, " ")
}

func columnType(field catalog.Field, dialect string) string {
	sqlite := dialect == DialectSQLite
	switch field.Type {
	case catalog.FieldTypeInt:
		if sqlite {
			return "INTEGER"
		}
		return "INT"
	case catalog.FieldTypeDecimal:
		if sqlite {
			return "REAL"
		}
		size := field.Size
		if size <= 0 {
			size = 10
		}
		return fmt.Sprintf("DECIMAL(%d,2)", size)
	case catalog.FieldTypeBool:
		if sqlite {
			return "INTEGER"
		}
		return "BOOLEAN"
	case catalog.FieldTypeDate:
		if sqlite {
			return "TEXT"
		}
		return "DATE"
	case catalog.FieldTypeTime:
		if sqlite {
			return "TEXT"
		}
		return "TIME"
	case catalog.FieldTypeDatetime:
		if sqlite {
			return "TEXT"
		}
		return "DATETIME"
	default:
		if sqlite {
			return "TEXT"
		}
		size := field.Size
		if size <= 0 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size)
	}
}

func formatDefault(value string) string {
	switch value {
	case "CURRENT_TIMESTAMP", "NULL":
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

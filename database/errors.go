package database

import (
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrColumnMismatch      = errors.New("column mismatch")
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// DatabaseError 保留驱动返回的原始错误信息，Kind 为分类后的哨兵错误，未分类时为 nil
type DatabaseError struct {
	Kind    error
	Code    int
	Message string
}

func (e *DatabaseError) Error() string {
	return e.Message
}

func (e *DatabaseError) Unwrap() error {
	return e.Kind
}

// classify 把驱动错误映射为 DatabaseError，不做重试
func classify(err error) error {
	if err == nil {
		return nil
	}
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		e := &DatabaseError{Code: int(myErr.Number), Message: myErr.Error()}
		switch myErr.Number {
		case mysqlDuplicateEntry:
			e.Kind = ErrDuplicateKey
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			e.Kind = ErrForeignKeyViolation
		}
		return e
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		e := &DatabaseError{Code: int(liteErr.ExtendedCode), Message: liteErr.Error()}
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			e.Kind = ErrDuplicateKey
		case sqlite3.ErrConstraintForeignKey:
			e.Kind = ErrForeignKeyViolation
		}
		return e
	}

	return &DatabaseError{Message: err.Error()}
}

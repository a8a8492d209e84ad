package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hatlonely/hms/query"
	"github.com/hatlonely/hms/statement"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type Options struct {
	Driver   string `cfg:"driver" def:"mysql" validate:"oneof=mysql sqlite3"`
	DSN      string `cfg:"dsn"`
	Host     string `cfg:"host" def:"localhost"`
	Port     string `cfg:"port" def:"3306"`
	Database string `cfg:"database" validate:"required_without=DSN"`
	Username string `cfg:"username"`
	Password string `cfg:"password"`
	Charset  string `cfg:"charset" def:"utf8mb4"`
	MaxConns int    `cfg:"maxConns" def:"10"`
	MaxIdle  int    `cfg:"maxIdle" def:"5"`

	ConnMaxLifetime time.Duration `cfg:"connMaxLifetime" def:"30m"`

	Limits Limits `cfg:"limits"`
}

// Limits 单条语句的执行限制，0 表示不限制，可在运行时替换
type Limits struct {
	StatementTimeout time.Duration `cfg:"statementTimeout"`
	MaxRows          int           `cfg:"maxRows" validate:"gte=0"`
}

// ResultSet 查询结果，Rows 中每一行与 Columns 一一对应
type ResultSet struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	Truncated    bool     `json:"truncated,omitempty"`
	RowsAffected int64    `json:"rowsAffected,omitempty"`
}

// Executor 执行层接口，admin 只依赖这个接口
type Executor interface {
	Exec(ctx context.Context, stmt string, params ...any) (int64, error)
	QueryRow(ctx context.Context, stmt string, params ...any) (map[string]any, error)
	Query(ctx context.Context, stmt string, params ...any) (*ResultSet, error)
	Execute(ctx context.Context, def *query.Definition) (*ResultSet, error)
	ExecuteCustom(ctx context.Context, stmt string) (*ResultSet, error)
	Migrate(ctx context.Context) error
	SetLimits(limits Limits)
	Close() error
}

// DB 连接池句柄，每个操作单独获取一个连接并在返回前释放
type DB struct {
	db     *sql.DB
	driver string
	limits atomic.Pointer[Limits]
}

func NewDBWithOptions(options *Options) (*DB, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	dsn, err := buildDSN(options)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(options.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", options.Driver)
	}

	if options.MaxConns > 0 {
		db.SetMaxOpenConns(options.MaxConns)
	}
	if options.MaxIdle > 0 {
		db.SetMaxIdleConns(options.MaxIdle)
	}
	if options.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(options.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, classify(err)
	}

	d := &DB{db: db, driver: options.Driver}
	d.SetLimits(options.Limits)
	return d, nil
}

func buildDSN(options *Options) (string, error) {
	switch options.Driver {
	case "mysql":
		if options.DSN != "" {
			return options.DSN, nil
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			options.Username, options.Password, options.Host, options.Port, options.Database, options.Charset), nil
	case "sqlite3":
		dsn := options.DSN
		if dsn == "" {
			dsn = options.Database
		}
		// 外键约束在 sqlite 中默认关闭
		if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk=") {
			if strings.Contains(dsn, "?") {
				dsn += "&_foreign_keys=1"
			} else {
				dsn += "?_foreign_keys=1"
			}
		}
		return dsn, nil
	default:
		return "", errors.Errorf("unsupported driver: %s", options.Driver)
	}
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) SetLimits(limits Limits) {
	d.limits.Store(&limits)
}

func (d *DB) Limits() Limits {
	return *d.limits.Load()
}

func (d *DB) Close() error {
	return d.db.Close()
}

// withConn 获取一个连接执行 fn，所有返回路径都会释放连接
func (d *DB) withConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	if timeout := d.Limits().StatementTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := d.db.Conn(ctx)
	if err != nil {
		return classify(err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// Exec 执行单条写语句，自动提交，返回影响行数
func (d *DB) Exec(ctx context.Context, stmt string, params ...any) (int64, error) {
	var affected int64
	err := d.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, stmt, params...)
		if err != nil {
			return classify(err)
		}
		affected, err = res.RowsAffected()
		return classify(err)
	})
	return affected, err
}

// QueryRow 读取第一行，没有结果时返回 ErrRecordNotFound
func (d *DB) QueryRow(ctx context.Context, stmt string, params ...any) (map[string]any, error) {
	var row map[string]any
	err := d.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, stmt, params...)
		if err != nil {
			return classify(err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return classify(err)
		}
		layouts, err := columnLayouts(rows)
		if err != nil {
			return classify(err)
		}
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return classify(err)
			}
			return ErrRecordNotFound
		}
		values, err := scanRow(rows, layouts)
		if err != nil {
			return classify(err)
		}
		row = make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		return nil
	})
	return row, err
}

// Query 执行查询，列名取自驱动
func (d *DB) Query(ctx context.Context, stmt string, params ...any) (*ResultSet, error) {
	var rs *ResultSet
	err := d.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		rs, err = d.query(ctx, conn, stmt, params...)
		return err
	})
	return rs, err
}

// Execute 执行预定义查询，返回列数与声明不一致时报 ErrColumnMismatch
func (d *DB) Execute(ctx context.Context, def *query.Definition) (*ResultSet, error) {
	if def == nil {
		return nil, errors.New("query definition is nil")
	}

	rs, err := d.Query(ctx, def.SQL)
	if err != nil {
		return nil, err
	}
	if len(rs.Columns) != len(def.Columns) {
		return nil, errors.Wrapf(ErrColumnMismatch, "%s: declared %d columns %v, got %d %v",
			def.ID, len(def.Columns), def.Columns, len(rs.Columns), rs.Columns)
	}
	rs.Columns = append([]string(nil), def.Columns...)
	return rs, nil
}

// ExecuteCustom 原样执行用户输入的语句，不返回行的语句只报告影响行数
func (d *DB) ExecuteCustom(ctx context.Context, stmt string) (*ResultSet, error) {
	if strings.TrimSpace(stmt) == "" {
		return nil, errors.New("empty statement")
	}

	if returnsRows(stmt) {
		return d.Query(ctx, stmt)
	}

	affected, err := d.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &ResultSet{Columns: []string{}, Rows: [][]any{}, RowsAffected: affected}, nil
}

func (d *DB) query(ctx context.Context, conn *sql.Conn, stmt string, params ...any) (*ResultSet, error) {
	rows, err := conn.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}
	layouts, err := columnLayouts(rows)
	if err != nil {
		return nil, classify(err)
	}

	maxRows := d.Limits().MaxRows
	rs := &ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if maxRows > 0 && len(rs.Rows) >= maxRows {
			rs.Truncated = true
			break
		}
		values, err := scanRow(rows, layouts)
		if err != nil {
			return nil, classify(err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return rs, nil
}

// columnLayouts 按列的声明类型确定时间值的输出格式，未知类型为空串
func columnLayouts(rows *sql.Rows) ([]string, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	layouts := make([]string, len(types))
	for i, t := range types {
		layouts[i] = timeLayout(t.DatabaseTypeName())
	}
	return layouts, nil
}

func timeLayout(dbType string) string {
	switch strings.ToUpper(dbType) {
	case "DATE":
		return time.DateOnly
	case "DATETIME", "TIMESTAMP":
		return time.DateTime
	case "TIME":
		return time.TimeOnly
	default:
		return ""
	}
}

func scanRow(rows *sql.Rows, layouts []string) ([]any, error) {
	values := make([]any, len(layouts))
	ptrs := make([]any, len(layouts))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = normalizeValue(v, layouts[i])
	}
	return values, nil
}

// normalizeValue 驱动返回的 []byte 转为字符串，时间按列类型格式化
// 列类型未知时零点时间视为日期
func normalizeValue(v any, layout string) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		if layout != "" {
			return val.Format(layout)
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	default:
		return v
	}
}

var rowKeywords = map[string]bool{
	"SELECT": true, "WITH": true, "SHOW": true, "DESCRIBE": true, "DESC": true,
	"EXPLAIN": true, "VALUES": true, "TABLE": true, "PRAGMA": true,
}

// returnsRows 按跳过注释后的首个关键字判断语句是否返回结果集
func returnsRows(stmt string) bool {
	return rowKeywords[statement.FirstKeyword(stmt)]
}

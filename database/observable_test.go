package database

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/hatlonely/hms/log/logger"
	"github.com/hatlonely/hms/query"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

// stubExecutor 按调用返回预设结果
type stubExecutor struct {
	rs     *ResultSet
	err    error
	limits Limits
	closed bool
}

func (s *stubExecutor) Exec(ctx context.Context, stmt string, params ...any) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func (s *stubExecutor) QueryRow(ctx context.Context, stmt string, params ...any) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"PatientID": int64(1)}, nil
}

func (s *stubExecutor) Query(ctx context.Context, stmt string, params ...any) (*ResultSet, error) {
	return s.rs, s.err
}

func (s *stubExecutor) Execute(ctx context.Context, def *query.Definition) (*ResultSet, error) {
	return s.rs, s.err
}

func (s *stubExecutor) ExecuteCustom(ctx context.Context, stmt string) (*ResultSet, error) {
	return s.rs, s.err
}

func (s *stubExecutor) Migrate(ctx context.Context) error { return s.err }
func (s *stubExecutor) SetLimits(limits Limits)          { s.limits = limits }

func (s *stubExecutor) Close() error {
	s.closed = true
	return nil
}

func TestObservableExecutor(t *testing.T) {
	Convey("测试可观测执行器", t, func() {
		stub := &stubExecutor{rs: &ResultSet{Columns: []string{"A"}, Rows: [][]any{{1}, {2}}}}
		registry := prometheus.NewRegistry()
		var buf bytes.Buffer
		l, err := logger.NewSLogWithWriter(&logger.SLogOptions{Level: "debug"}, &buf)
		So(err, ShouldBeNil)

		obs, err := NewObservableExecutorWithOptions(stub, &ObservableOptions{
			Name:          "test_db",
			EnableMetrics: true,
			EnableLogging: true,
			EnableTracing: true,
		}, l, registry)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("成功的查询计数", func() {
			rs, err := obs.Query(ctx, "SELECT 1")
			So(err, ShouldBeNil)
			So(rs.Rows, ShouldHaveLength, 2)
			So(testutil.ToFloat64(obs.metrics.operationCounter.WithLabelValues("query", "success")), ShouldEqual, 1)
			So(testutil.ToFloat64(obs.metrics.activeOperations.WithLabelValues("query")), ShouldEqual, 0)
			So(buf.String(), ShouldContainSubstring, "database operation completed")
		})

		Convey("失败按错误分类计数", func() {
			stub.err = &DatabaseError{Kind: ErrDuplicateKey, Message: "Duplicate entry"}
			_, err := obs.Exec(ctx, "INSERT")
			So(errors.Is(err, ErrDuplicateKey), ShouldBeTrue)
			So(testutil.ToFloat64(obs.metrics.operationCounter.WithLabelValues("exec", "duplicate_key")), ShouldEqual, 1)
			So(buf.String(), ShouldContainSubstring, "database operation failed")

			stub.err = ErrRecordNotFound
			_, err = obs.QueryRow(ctx, "SELECT")
			So(errors.Is(err, ErrRecordNotFound), ShouldBeTrue)
			So(testutil.ToFloat64(obs.metrics.operationCounter.WithLabelValues("query_row", "not_found")), ShouldEqual, 1)
		})

		Convey("透传限制和关闭", func() {
			obs.SetLimits(Limits{MaxRows: 5})
			So(stub.limits.MaxRows, ShouldEqual, 5)
			So(obs.Close(), ShouldBeNil)
			So(stub.closed, ShouldBeTrue)
		})

		Convey("同一个 registry 重复注册报错", func() {
			_, err := NewObservableExecutorWithOptions(stub, &ObservableOptions{Name: "test_db", EnableMetrics: true}, nil, registry)
			So(err, ShouldNotBeNil)
		})

		Convey("参数校验", func() {
			_, err := NewObservableExecutorWithOptions(nil, &ObservableOptions{}, nil, registry)
			So(err, ShouldNotBeNil)
			_, err = NewObservableExecutorWithOptions(stub, nil, nil, registry)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("测试驱动错误分类", t, func() {
		So(classify(nil), ShouldBeNil)

		err := classify(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '214-555-1001' for key 'Phone'"})
		So(errors.Is(err, ErrDuplicateKey), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "Duplicate entry")

		err = classify(errors.Wrap(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, "exec"))
		So(errors.Is(err, ErrForeignKeyViolation), ShouldBeTrue)

		err = classify(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
		So(errors.Is(err, ErrForeignKeyViolation), ShouldBeTrue)

		err = classify(&mysql.MySQLError{Number: 1146, Message: "Table 'hms.Pharmacy' doesn't exist"})
		var dbErr *DatabaseError
		So(errors.As(err, &dbErr), ShouldBeTrue)
		So(dbErr.Kind, ShouldBeNil)
		So(dbErr.Code, ShouldEqual, 1146)

		err = classify(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey})
		So(errors.Is(err, ErrForeignKeyViolation), ShouldBeTrue)

		err = classify(errors.New("connection refused"))
		So(err.Error(), ShouldEqual, "connection refused")

		// 已经分类过的错误保持不变
		again := classify(err)
		So(again, ShouldEqual, err)
	})
}

func TestReturnsRows(t *testing.T) {
	Convey("测试语句类型判断", t, func() {
		for _, stmt := range []string{
			"SELECT 1", "  select * from Patient", "WITH a AS (SELECT 1) SELECT * FROM a",
			"(SELECT 1) UNION (SELECT 2)", "SHOW TABLES", "DESCRIBE Patient", "EXPLAIN SELECT 1",
		} {
			So(returnsRows(stmt), ShouldBeTrue)
		}
		for _, stmt := range []string{
			"UPDATE Room SET Availability = 0", "DELETE FROM Billing", "INSERT INTO Nurse VALUES (1)",
			"CREATE TABLE t (a INT)", "",
		} {
			So(returnsRows(stmt), ShouldBeFalse)
		}
	})
}

func TestBuildDSN(t *testing.T) {
	Convey("测试 DSN 生成", t, func() {
		dsn, err := buildDSN(&Options{
			Driver: "mysql", Username: "root", Password: "pw", Host: "db", Port: "3306",
			Database: "hospital", Charset: "utf8mb4",
		})
		So(err, ShouldBeNil)
		So(dsn, ShouldEqual, "root:pw@tcp(db:3306)/hospital?charset=utf8mb4&parseTime=True&loc=Local")

		dsn, _ = buildDSN(&Options{Driver: "mysql", DSN: "u:p@tcp(h:1)/d"})
		So(dsn, ShouldEqual, "u:p@tcp(h:1)/d")

		dsn, _ = buildDSN(&Options{Driver: "sqlite3", Database: "/tmp/hms.db"})
		So(dsn, ShouldEqual, "/tmp/hms.db?_foreign_keys=1")

		dsn, _ = buildDSN(&Options{Driver: "sqlite3", Database: "file:hms.db?cache=shared"})
		So(dsn, ShouldEqual, "file:hms.db?cache=shared&_foreign_keys=1")

		dsn, _ = buildDSN(&Options{Driver: "sqlite3", DSN: "hms.db?_fk=0"})
		So(dsn, ShouldEqual, "hms.db?_fk=0")

		_, err = buildDSN(&Options{Driver: "oracle"})
		So(err, ShouldNotBeNil)
	})
}

// Package admin 把界面层的请求分派到目录、语句构建器和执行层，并把错误转换成给用户看的文本
package admin

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/log/logger"
	"github.com/hatlonely/hms/query"
	"github.com/hatlonely/hms/statement"
	"github.com/pkg/errors"
)

type Options struct {
	Custom PolicyOptions `cfg:"custom"`
}

// Outcome 写操作的结果
type Outcome struct {
	Message      string `json:"message"`
	RowsAffected int64  `json:"rowsAffected"`
}

// NotFoundError 按主键找不到记录
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return "No record found with ID " + strconv.FormatInt(e.ID, 10) + " in the " + e.Entity + " table."
}

func (e *NotFoundError) Unwrap() error {
	return database.ErrRecordNotFound
}

type Service struct {
	executor database.Executor
	trail    audit.Store
	logger   logger.Logger
	mode     atomic.Pointer[string]
}

// NewServiceWithOptions trail 为 nil 时不记录审计，l 为 nil 时使用默认 logger
func NewServiceWithOptions(options *Options, executor database.Executor, trail audit.Store, l logger.Logger) (*Service, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if executor == nil {
		return nil, errors.New("executor is nil")
	}
	if l == nil {
		l = log.Default()
	}

	s := &Service{
		executor: executor,
		trail:    trail,
		logger:   l.WithGroup("admin"),
	}
	s.SetPolicy(options.Custom)
	return s, nil
}

// SetPolicy 替换自定义 SQL 策略，空模式视为 disabled
func (s *Service) SetPolicy(policy PolicyOptions) {
	mode := policy.Mode
	if mode == "" {
		mode = ModeDisabled
	}
	s.mode.Store(&mode)
	s.logger.Info("custom query policy updated", "mode", mode)
}

func (s *Service) Policy() string {
	return *s.mode.Load()
}

func (s *Service) SetLimits(limits database.Limits) {
	s.executor.SetLimits(limits)
}

func (s *Service) Entities() []string {
	return catalog.Entities()
}

func (s *Service) Schema(entity string) (*catalog.EntitySchema, error) {
	return catalog.Lookup(entity)
}

// CheckField 校验单个表单字段，不访问数据库
func (s *Service) CheckField(entity string, column string, value string) error {
	return catalog.CheckField(entity, column, value)
}

func (s *Service) Create(ctx context.Context, entity string, form map[string]string) (*Outcome, error) {
	record, err := catalog.NewRecord(entity, form)
	if err != nil {
		return nil, err
	}
	schema, err := catalog.SchemaOf(record)
	if err != nil {
		return nil, err
	}
	stmt, params, err := statement.BuildInsert(schema, record)
	if err != nil {
		return nil, err
	}

	affected, err := s.executor.Exec(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "record created", "entity", entity)
	return &Outcome{
		Message:      "Record successfully created in the " + entity + " table.",
		RowsAffected: affected,
	}, nil
}

func (s *Service) ReadAll(ctx context.Context, entity string) (*database.ResultSet, error) {
	stmt, err := statement.BuildSelectAll(entity)
	if err != nil {
		return nil, err
	}
	return s.executor.Query(ctx, stmt)
}

func (s *Service) Get(ctx context.Context, entity string, id string) (map[string]any, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return nil, err
	}
	pk, err := parseID(schema, id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, schema, pk)
}

func (s *Service) get(ctx context.Context, schema *catalog.EntitySchema, pk int64) (map[string]any, error) {
	stmt, params, err := statement.BuildSelectByKey(schema.Name, schema.PrimaryKey, pk)
	if err != nil {
		return nil, err
	}
	row, err := s.executor.QueryRow(ctx, stmt, params...)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: schema.Name, ID: pk}
	}
	return row, err
}

// Update 覆盖全部可编辑字段。MySQL 在值没有变化时报告 0 行，此时回查一次区分记录不存在
func (s *Service) Update(ctx context.Context, entity string, id string, form map[string]string) (*Outcome, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return nil, err
	}
	pk, err := parseID(schema, id)
	if err != nil {
		return nil, err
	}
	record, err := catalog.NewRecord(entity, form)
	if err != nil {
		return nil, err
	}
	stmt, params, err := statement.BuildUpdate(schema, pk, record)
	if err != nil {
		return nil, err
	}

	affected, err := s.executor.Exec(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.get(ctx, schema, pk); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "record updated", "entity", entity, "id", pk)
	return &Outcome{
		Message:      "Record in the " + entity + " table successfully updated.",
		RowsAffected: affected,
	}, nil
}

func (s *Service) Delete(ctx context.Context, entity string, id string) (*Outcome, error) {
	schema, err := catalog.Lookup(entity)
	if err != nil {
		return nil, err
	}
	pk, err := parseID(schema, id)
	if err != nil {
		return nil, err
	}
	stmt, params, err := statement.BuildDelete(entity, pk)
	if err != nil {
		return nil, err
	}

	affected, err := s.executor.Exec(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &NotFoundError{Entity: entity, ID: pk}
	}

	s.logger.InfoContext(ctx, "record deleted", "entity", entity, "id", pk)
	return &Outcome{
		Message:      "Record with ID " + strconv.FormatInt(pk, 10) + " successfully deleted from the " + entity + " table.",
		RowsAffected: affected,
	}, nil
}

func parseID(schema *catalog.EntitySchema, id string) (int64, error) {
	pk, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || pk <= 0 {
		return 0, &catalog.ValidationError{
			Entity: schema.Name,
			Fields: []catalog.FieldError{{Field: schema.PrimaryKey, Rule: "parse", Message: "must be a positive integer"}},
		}
	}
	return pk, nil
}

func (s *Service) Categories() []query.Category {
	return query.ListCategories()
}

func (s *Service) Queries(category query.Category) ([]*query.Definition, error) {
	return query.ListQueries(category)
}

func (s *Service) RunQuery(ctx context.Context, category query.Category, label string) (*database.ResultSet, error) {
	def, err := query.Find(category, label)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, def)
}

func (s *Service) RunQueryByID(ctx context.Context, id string) (*database.ResultSet, error) {
	def, err := query.Lookup(id)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, def)
}

// RunCustom 按当前策略执行自定义 SQL，无论成功、失败还是被拒绝都会写审计
func (s *Service) RunCustom(ctx context.Context, operator string, sql string) (*database.ResultSet, error) {
	mode := s.Policy()
	start := time.Now()

	var rs *database.ResultSet
	err := CheckCustom(mode, sql)
	if err != nil {
		s.logger.WarnContext(ctx, "custom query denied", "operator", operator, "mode", mode, "reason", err.Error())
	} else {
		rs, err = s.executor.ExecuteCustom(ctx, sql)
	}

	s.record(ctx, &audit.Entry{
		Operator:   operator,
		SQL:        sql,
		Mode:       mode,
		Rows:       rowCount(rs),
		Error:      errorText(err),
		DurationMs: time.Since(start).Milliseconds(),
	})

	return rs, err
}

func (s *Service) Audit(ctx context.Context, n int) ([]*audit.Entry, error) {
	if s.trail == nil {
		return []*audit.Entry{}, nil
	}
	return s.trail.Recent(ctx, n)
}

// record 审计写入失败只记日志，不影响本次执行结果
func (s *Service) record(ctx context.Context, entry *audit.Entry) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "append audit entry failed", "error", err.Error(), "operator", entry.Operator)
	}
}

func rowCount(rs *database.ResultSet) int64 {
	if rs == nil {
		return 0
	}
	if len(rs.Rows) > 0 {
		return int64(len(rs.Rows))
	}
	return rs.RowsAffected
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hatlonely/hms/log/logger"
	"github.com/hatlonely/hms/query"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ObservableOptions struct {
	// Name 指标名前缀，同时作为日志和 span 的 component
	Name string `cfg:"name" def:"hms_db"`

	EnableMetrics bool `cfg:"enableMetrics" def:"true"`
	EnableLogging bool `cfg:"enableLogging" def:"true"`
	EnableTracing bool `cfg:"enableTracing" def:"false"`
}

// ObservableMetrics 执行层的 prometheus 指标
type ObservableMetrics struct {
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	activeOperations  *prometheus.GaugeVec
	resultRows        *prometheus.HistogramVec
}

// NewObservableMetrics 创建并注册指标，registerer 为 nil 时注册到默认 registry
func NewObservableMetrics(name string, registerer prometheus.Registerer) (*ObservableMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	metrics := &ObservableMetrics{
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation"},
		),
		activeOperations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: name + "_active_operations",
				Help: "Number of in-flight database operations",
			},
			[]string{"operation"},
		),
		resultRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_result_rows",
				Help:    "Rows returned or affected per operation",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000},
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{
		metrics.operationCounter,
		metrics.operationDuration,
		metrics.activeOperations,
		metrics.resultRows,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
	}

	return metrics, nil
}

// ObservableExecutor 装饰器，为 Executor 的每个操作记录指标、日志和 span
type ObservableExecutor struct {
	executor Executor

	logger        logger.Logger
	metrics       *ObservableMetrics
	tracer        trace.Tracer
	name          string
	enableMetrics bool
	enableLogging bool
	enableTracing bool
}

func NewObservableExecutorWithOptions(executor Executor, options *ObservableOptions, l logger.Logger, registerer prometheus.Registerer) (*ObservableExecutor, error) {
	if executor == nil {
		return nil, errors.New("executor is nil")
	}
	if options == nil {
		return nil, errors.New("options is nil")
	}

	obs := &ObservableExecutor{
		executor:      executor,
		name:          options.Name,
		enableMetrics: options.EnableMetrics,
		enableLogging: options.EnableLogging && l != nil,
		enableTracing: options.EnableTracing,
	}

	if obs.enableLogging {
		obs.logger = l.WithGroup("database")
	}

	if options.EnableMetrics {
		metrics, err := NewObservableMetrics(options.Name, registerer)
		if err != nil {
			return nil, err
		}
		obs.metrics = metrics
	}

	if options.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("database.%s", options.Name))
	}

	return obs, nil
}

// status 把错误分类成指标标签
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrForeignKeyViolation):
		return "foreign_key"
	case errors.Is(err, ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, ErrColumnMismatch):
		return "column_mismatch"
	default:
		return "error"
	}
}

// observe 统一的观测逻辑，fn 返回结果行数或影响行数
func (obs *ObservableExecutor) observe(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(context.Context) (int64, error)) error {
	start := time.Now()

	var span trace.Span
	if obs.enableTracing && obs.tracer != nil {
		attrs = append(attrs,
			attribute.String("component", obs.name),
			attribute.String("operation", operation),
		)
		ctx, span = obs.tracer.Start(ctx, fmt.Sprintf("database.%s", operation), trace.WithAttributes(attrs...))
		defer span.End()
	}

	if obs.enableMetrics && obs.metrics != nil {
		obs.metrics.activeOperations.WithLabelValues(operation).Inc()
		defer obs.metrics.activeOperations.WithLabelValues(operation).Dec()
	}

	rows, err := fn(ctx)
	duration := time.Since(start)

	if span != nil {
		span.SetAttributes(
			attribute.Int64("duration_ms", duration.Milliseconds()),
			attribute.Int64("rows", rows),
		)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if obs.enableMetrics && obs.metrics != nil {
		obs.metrics.operationCounter.WithLabelValues(operation, status(err)).Inc()
		obs.metrics.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
		if err == nil {
			obs.metrics.resultRows.WithLabelValues(operation).Observe(float64(rows))
		}
	}

	if obs.enableLogging && obs.logger != nil {
		if err != nil {
			obs.logger.ErrorContext(ctx, "database operation failed",
				"component", obs.name,
				"operation", operation,
				"duration_ms", duration.Milliseconds(),
				"status", status(err),
				"error", err.Error(),
			)
		} else {
			obs.logger.DebugContext(ctx, "database operation completed",
				"component", obs.name,
				"operation", operation,
				"duration_ms", duration.Milliseconds(),
				"rows", rows,
			)
		}
	}

	return err
}

func rowCount(rs *ResultSet) int64 {
	if rs == nil {
		return 0
	}
	if len(rs.Rows) == 0 {
		return rs.RowsAffected
	}
	return int64(len(rs.Rows))
}

func (obs *ObservableExecutor) Exec(ctx context.Context, stmt string, params ...any) (int64, error) {
	var affected int64
	err := obs.observe(ctx, "exec", nil, func(ctx context.Context) (int64, error) {
		var err error
		affected, err = obs.executor.Exec(ctx, stmt, params...)
		return affected, err
	})
	return affected, err
}

func (obs *ObservableExecutor) QueryRow(ctx context.Context, stmt string, params ...any) (map[string]any, error) {
	var row map[string]any
	err := obs.observe(ctx, "query_row", nil, func(ctx context.Context) (int64, error) {
		var err error
		row, err = obs.executor.QueryRow(ctx, stmt, params...)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
	return row, err
}

func (obs *ObservableExecutor) Query(ctx context.Context, stmt string, params ...any) (*ResultSet, error) {
	var rs *ResultSet
	err := obs.observe(ctx, "query", nil, func(ctx context.Context) (int64, error) {
		var err error
		rs, err = obs.executor.Query(ctx, stmt, params...)
		return rowCount(rs), err
	})
	return rs, err
}

func (obs *ObservableExecutor) Execute(ctx context.Context, def *query.Definition) (*ResultSet, error) {
	var attrs []attribute.KeyValue
	if def != nil {
		attrs = append(attrs, attribute.String("query.id", def.ID))
	}
	var rs *ResultSet
	err := obs.observe(ctx, "execute", attrs, func(ctx context.Context) (int64, error) {
		var err error
		rs, err = obs.executor.Execute(ctx, def)
		return rowCount(rs), err
	})
	return rs, err
}

func (obs *ObservableExecutor) ExecuteCustom(ctx context.Context, stmt string) (*ResultSet, error) {
	var rs *ResultSet
	err := obs.observe(ctx, "execute_custom", nil, func(ctx context.Context) (int64, error) {
		var err error
		rs, err = obs.executor.ExecuteCustom(ctx, stmt)
		return rowCount(rs), err
	})
	return rs, err
}

func (obs *ObservableExecutor) Migrate(ctx context.Context) error {
	return obs.observe(ctx, "migrate", nil, func(ctx context.Context) (int64, error) {
		return 0, obs.executor.Migrate(ctx)
	})
}

func (obs *ObservableExecutor) SetLimits(limits Limits) {
	obs.executor.SetLimits(limits)
	if obs.enableLogging && obs.logger != nil {
		obs.logger.Info("limits updated",
			"component", obs.name,
			"statement_timeout", limits.StatementTimeout.String(),
			"max_rows", limits.MaxRows,
		)
	}
}

func (obs *ObservableExecutor) Close() error {
	return obs.observe(context.Background(), "close", nil, func(ctx context.Context) (int64, error) {
		return 0, obs.executor.Close()
	})
}

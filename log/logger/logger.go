package logger

import (
	"context"
)

// Logger 组件通过参数接收的日志器，With/WithGroup 派生的日志器共享同一个输出
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger

	// Reopen 日志文件被外部轮转后重新打开，没有文件输出时什么也不做
	Reopen() error
	Close() error
}

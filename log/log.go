package log

import (
	"io"
	"sync"

	"github.com/hatlonely/hms/log/logger"
	"github.com/pkg/errors"
)

type Options = logger.SLogOptions

var (
	mu            sync.RWMutex
	defaultLogger logger.Logger
)

func init() {
	// 默认向终端输出 text 格式日志
	l, err := logger.NewSLogWithOptions(&logger.SLogOptions{
		Level:  "info",
		Format: "text",
	})
	if err != nil {
		panic("failed to initialize default logger: " + err.Error())
	}
	defaultLogger = l
}

// Default 进程级日志器，只在命令行启动阶段使用，组件通过参数接收日志器
func Default() logger.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func SetDefault(l logger.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func NewLoggerWithOptions(options *Options) (logger.Logger, error) {
	l, err := logger.NewSLogWithOptions(options)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create logger")
	}
	return l, nil
}

// Discard 丢弃全部输出，测试中使用
func Discard() logger.Logger {
	l, _ := logger.NewSLogWithWriter(&logger.SLogOptions{Level: "error"}, io.Discard)
	return l
}

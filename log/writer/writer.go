package writer

import (
	"io"

	"github.com/pkg/errors"
)

type Writer interface {
	io.Writer
	io.Closer
}

// Reopener 支持外部轮转的输出器，目前只有文件输出
type Reopener interface {
	Reopen() error
}

// Options 输出器配置，Type 取 console、file 或 multi
type Options struct {
	Type string `cfg:"type" def:"console" validate:"omitempty,oneof=console file multi"`

	// console: stdout 或 stderr
	Target string `cfg:"target" def:"stdout"`

	// file: 日志文件路径
	Path string `cfg:"path"`

	// multi: 同时写入多个输出器
	Writers []*Options `cfg:"writers"`
}

// NewWriterWithOptions 按类型创建输出器，nil 配置等价于输出到 stdout
func NewWriterWithOptions(options *Options) (Writer, error) {
	if options == nil {
		return NewConsoleWriterWithOptions(nil)
	}

	switch options.Type {
	case "", "console":
		return NewConsoleWriterWithOptions(&ConsoleWriterOptions{Target: options.Target})
	case "file":
		return NewFileWriterWithOptions(&FileWriterOptions{Path: options.Path})
	case "multi":
		return NewMultiWriterWithOptions(&MultiWriterOptions{Writers: options.Writers})
	default:
		return nil, errors.Errorf("unsupported writer type: %s", options.Type)
	}
}

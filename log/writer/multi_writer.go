package writer

import (
	"fmt"

	"github.com/pkg/errors"
)

type MultiWriterOptions struct {
	Writers []*Options `cfg:"writers"`
}

// MultiWriter 同一条日志写到多个输出，例如终端加文件
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriterWithOptions(options *MultiWriterOptions) (*MultiWriter, error) {
	if options == nil || len(options.Writers) == 0 {
		return nil, errors.New("at least one writer is required")
	}

	m := &MultiWriter{writers: make([]Writer, 0, len(options.Writers))}
	for i, opts := range options.Writers {
		if opts != nil && opts.Type == "multi" {
			_ = m.Close()
			return nil, errors.Errorf("writer %d: nested multi writer is not supported", i)
		}
		w, err := NewWriterWithOptions(opts)
		if err != nil {
			_ = m.Close()
			return nil, errors.WithMessagef(err, "create writer %d failed", i)
		}
		m.writers = append(m.writers, w)
	}
	return m, nil
}

// Write 任意一个输出失败都返回错误，其余输出照常写入
func (m *MultiWriter) Write(p []byte) (int, error) {
	var failed []error
	for _, w := range m.writers {
		if _, err := w.Write(p); err != nil {
			failed = append(failed, err)
		}
	}
	if err := join("write", failed); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (m *MultiWriter) Reopen() error {
	var failed []error
	for _, w := range m.writers {
		if r, ok := w.(Reopener); ok {
			if err := r.Reopen(); err != nil {
				failed = append(failed, err)
			}
		}
	}
	return join("reopen", failed)
}

func (m *MultiWriter) Close() error {
	var failed []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			failed = append(failed, err)
		}
	}
	return join("close", failed)
}

func join(op string, errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errors.WithMessage(errs[0], op+" failed")
	default:
		return errors.Errorf("%s failed on %d writers: %s", op, len(errs), fmt.Sprint(errs))
	}
}

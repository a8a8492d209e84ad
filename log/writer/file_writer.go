package writer

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type FileWriterOptions struct {
	// Path 日志文件路径，目录不存在时自动创建
	Path string `cfg:"path"`
}

// FileWriter 追加写入单个文件，Reopen 之后写入新的同名文件
type FileWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func NewFileWriterWithOptions(options *FileWriterOptions) (*FileWriter, error) {
	if options == nil || options.Path == "" {
		return nil, errors.New("file path is required")
	}

	f := &FileWriter{path: options.Path}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, errors.Wrapf(err, "os.MkdirAll failed. directory: %s", filepath.Dir(f.path))
	}
	file, err := f.open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return f, nil
}

func (f *FileWriter) open() (*os.File, error) {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "os.OpenFile failed. path: %s", f.path)
	}
	return file, nil
}

func (f *FileWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, errors.Errorf("log file %s is closed", f.path)
	}
	return f.file.Write(p)
}

// Reopen 先打开新文件再关闭旧文件，打开失败时继续写旧文件
func (f *FileWriter) Reopen() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return errors.Errorf("log file %s is closed", f.path)
	}
	file, err := f.open()
	if err != nil {
		return err
	}
	old := f.file
	f.file = file
	return errors.Wrap(old.Close(), "close rotated log file failed")
}

func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return errors.Wrapf(err, "close log file %s failed", f.path)
}

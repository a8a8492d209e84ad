package cfg

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher 监听配置文件变化，文件被写入或替换时重新加载
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Watch 每次文件变化都重新执行 LoadWithOptions，把新对象或加载错误交给 onChange。
// 监听的是文件所在目录，编辑器先删后写的保存方式同样能触发。
func Watch[T any](options *Options, onChange func(object *T, err error)) (*Watcher, error) {
	if options == nil || options.Path == "" {
		return nil, errors.New("watch requires a config file path")
	}
	if onChange == nil {
		return nil, errors.New("onChange is nil")
	}

	path, err := filepath.Abs(options.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "filepath.Abs failed. path: %s", options.Path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "failed to add directory to watcher")
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				var object T
				onChange(&object, LoadWithOptions(options, &object))
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

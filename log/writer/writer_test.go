package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWriterWithOptions(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		options *Options
		wantErr bool
	}{
		{name: "nil options", options: nil},
		{name: "console stdout", options: &Options{Type: "console"}},
		{name: "console stderr", options: &Options{Type: "console", Target: "stderr"}},
		{name: "file", options: &Options{Type: "file", Path: filepath.Join(dir, "a", "b.log")}},
		{name: "file without path", options: &Options{Type: "file"}, wantErr: true},
		{
			name: "multi",
			options: &Options{Type: "multi", Writers: []*Options{
				{Type: "console"},
				{Type: "file", Path: filepath.Join(dir, "multi.log")},
			}},
		},
		{name: "empty multi", options: &Options{Type: "multi"}, wantErr: true},
		{
			name:    "nested multi",
			options: &Options{Type: "multi", Writers: []*Options{{Type: "multi"}}},
			wantErr: true,
		},
		{name: "unknown", options: &Options{Type: "kafka"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWriterWithOptions(tt.options)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWriterWithOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if w != nil {
				_ = w.Close()
			}
		})
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hms.log")
	w, err := NewFileWriterWithOptions(&FileWriterOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("after close\n")); err == nil {
		t.Error("write after close should fail")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}

	// 重新打开时追加写入
	w, err = NewFileWriterWithOptions(&FileWriterOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("second\n"))
	_ = w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "first\nsecond\n" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestMultiWriter(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")
	w, err := NewMultiWriterWithOptions(&MultiWriterOptions{Writers: []*Options{
		{Type: "file", Path: a},
		{Type: "file", Path: b},
	}})
	if err != nil {
		t.Fatal(err)
	}

	n, err := w.Write([]byte("line\n"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{a, b} {
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "line") {
			t.Errorf("%s missing content", path)
		}
	}
}

func TestFileWriter_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hms.log")
	m, err := NewMultiWriterWithOptions(&MultiWriterOptions{Writers: []*Options{
		{Type: "console", Target: "stderr"},
		{Type: "file", Path: path},
	}})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	_, _ = m.Write([]byte("before\n"))
	rotated := filepath.Join(dir, "hms.log.1")
	if err := os.Rename(path, rotated); err != nil {
		t.Fatal(err)
	}
	if err := m.Reopen(); err != nil {
		t.Fatal(err)
	}
	_, _ = m.Write([]byte("after\n"))

	old, _ := os.ReadFile(rotated)
	cur, _ := os.ReadFile(path)
	if string(old) != "before\n" || string(cur) != "after\n" {
		t.Errorf("rotated=%q current=%q", old, cur)
	}

	f, err := NewFileWriterWithOptions(&FileWriterOptions{Path: filepath.Join(dir, "x.log")})
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if err := f.Reopen(); err == nil {
		t.Error("reopen after close should fail")
	}
}

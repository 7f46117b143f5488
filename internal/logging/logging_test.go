package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeDisabled(t *testing.T) {
	t.Setenv("TYPETEST_DEBUG", "")
	t.Setenv("TYPETEST_DEBUG_FILE", "")
	path, err := Initialize(false, "", t.TempDir())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no log file, got %q", path)
	}
}

func TestInitializeDebugCreatesFile(t *testing.T) {
	t.Setenv("TYPETEST_DEBUG", "")
	t.Setenv("TYPETEST_DEBUG_FILE", "")
	dir := t.TempDir()
	path, err := Initialize(true, "", dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(Close)
	if filepath.Dir(path) != dir || !strings.HasSuffix(path, ".log") {
		t.Fatalf("unexpected log path %q", path)
	}
	Logger.Info("hello")
	Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected log line, got %s", data)
	}
}

func TestInitializeEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", "debug.log")
	t.Setenv("TYPETEST_DEBUG", "")
	t.Setenv("TYPETEST_DEBUG_FILE", file)
	path, err := Initialize(false, "", "")
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(Close)
	if path != file {
		t.Fatalf("expected %q, got %q", file, path)
	}
}

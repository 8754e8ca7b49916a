package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npratt/mindmap/internal/config"
)

func TestSetupTUILogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	result, err := SetupTUILogger(path, slog.LevelInfo, config.Default().LogRotation)
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	if result.FilePath != path {
		t.Errorf("expected FilePath %q, got %q", path, result.FilePath)
	}

	result.Logger.Info("test message", "key", "value")
	_ = result.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(content), "test message") {
		t.Errorf("log file should contain 'test message', got: %s", content)
	}
	if !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("log file should contain key=value, got: %s", content)
	}
}

func TestSetupTUILogger_DoesNotWriteToStderr(t *testing.T) {
	// Anything on stderr would corrupt the viewer.
	path := filepath.Join(t.TempDir(), "debug.log")

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	result, err := SetupTUILogger(path, slog.LevelInfo, config.Default().LogRotation)
	if err != nil {
		os.Stderr = oldStderr
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	defer func() { _ = result.Close() }()

	result.Logger.Info("this should not appear on stderr")

	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	if buf.Len() > 0 {
		t.Errorf("TUI logger wrote to stderr: %s", buf.String())
	}
}

func TestSetupLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupLoggerWithWriter(&buf, slog.LevelInfo)
	logger.Info("test message", "foo", "bar")

	if !strings.Contains(buf.String(), `"foo":"bar"`) {
		t.Errorf("output should contain foo=bar, got: %s", buf.String())
	}
}

func TestSetupTUILogger_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := os.WriteFile(path, []byte("existing content\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result, err := SetupTUILogger(path, slog.LevelInfo, config.Default().LogRotation)
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	result.Logger.Info("new message")
	_ = result.Close()

	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "existing content") {
		t.Error("should preserve existing content")
	}
	if !strings.Contains(string(content), "new message") {
		t.Error("should append new message")
	}
}

func TestSetupTUILogger_FailsWhenDirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := SetupTUILogger(filepath.Join(blocker, "debug.log"), slog.LevelInfo, config.Default().LogRotation)
	if err == nil {
		_ = result.Close()
		t.Error("expected error when the log directory cannot be created")
	}
}

func TestSetupTUILogger_RespectsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)
	result, err := SetupTUILogger(path, level, config.Default().LogRotation)
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}

	result.Logger.Info("info message")
	result.Logger.Warn("warn message")
	level.Set(slog.LevelDebug)
	result.Logger.Debug("debug message")
	_ = result.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "info message") {
		t.Error("INFO message should be filtered out at WARN level")
	}
	if !strings.Contains(content, "warn message") {
		t.Error("WARN message should appear")
	}
	if !strings.Contains(content, "debug message") {
		t.Error("DEBUG message should appear after lowering the level")
	}
}

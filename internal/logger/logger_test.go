package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{
			level:    "error",
			expected: []string{"ERROR"},
			excluded: []string{"WARN", "INFO", "DEBUG"},
		},
		{
			level:    "warn",
			expected: []string{"ERROR", "WARN"},
			excluded: []string{"INFO", "DEBUG"},
		},
		{
			level:    "info",
			expected: []string{"ERROR", "WARN", "INFO"},
			excluded: []string{"DEBUG"},
		},
		{
			level:    "debug",
			expected: []string{"ERROR", "WARN", "INFO", "DEBUG"},
			excluded: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")

			err := Init(Options{Level: tt.level, File: logFile})
			if err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}

			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}

			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestSugar(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "sugar.log")

	if err := Init(Options{Level: "info", File: logFile}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Sugar.Infof("converted %d meshes from %s", 3, "box.gltf")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if !strings.Contains(string(content), "converted 3 meshes from box.gltf") {
		t.Error("expected formatted message in log output")
	}
}

func TestParseLevelFallback(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "fallback.log")

	// Unknown levels fall back to info.
	if err := Init(Options{Level: "bogus", File: logFile}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Debug("hidden")
	Info("shown")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	logContent := string(content)
	if strings.Contains(logContent, "hidden") {
		t.Error("debug message should be suppressed at info level")
	}
	if !strings.Contains(logContent, "shown") {
		t.Error("info message should be present at info level")
	}
}

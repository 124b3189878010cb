package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/tableau"
	"github.com/phanxgames/tableau/internal/config"
)

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			log := New(config.LoggingConfig{Level: tt.level, LogFile: logFile}, nil)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")
			_ = log.Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, `"level":"`+exp+`"`) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, `"level":"`+exc+`"`) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info"}, &buf)
	log.Info("scene loaded", zap.String("composition", "intro"))
	log.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "scene loaded") || !strings.Contains(out, "intro") {
		t.Errorf("console output = %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
}

func TestTableauLoggerName(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "player.log")
	defer tableau.SetLogger(nil)

	log := New(config.LoggingConfig{Level: "info", LogFile: logFile}, nil)
	tableau.SetLogger(log)
	tableau.Logger().Info("composition loaded", zap.String("composition", "intro"))
	_ = log.Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	s := string(content)
	if !strings.Contains(s, `"logger":"tableau"`) || !strings.Contains(s, `"composition":"intro"`) {
		t.Errorf("log output = %s", s)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRotation(t *testing.T) {
	w := rotating("/tmp/test.log")
	if w.Filename != "/tmp/test.log" || w.MaxSize != 20 || w.MaxBackups != 3 || w.MaxAge != 7 {
		t.Errorf("rotation = %+v", w)
	}
	if !w.Compress {
		t.Error("rotated files should be compressed")
	}
}

package shared

import (
	"bytes"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "key=value") {
			t.Errorf("unexpected log output %q", buf.String())
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})

		if err := SetLogLevel(logger, "debug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}

		if err := SetLogLevel(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Error("invalid level should not change the logger")
		}

		if err := SetLogLevel(logger, ""); err != nil {
			t.Errorf("empty level should be a no-op, got %v", err)
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("written")

		data := mustRead(t, path)
		if !strings.Contains(data, "written") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestOpenURL(t *testing.T) {
	origRuntime, origStart := getRuntime, startCmd
	t.Cleanup(func() { getRuntime, startCmd = origRuntime, origStart })

	var started []string
	startCmd = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	t.Run("rejects non http URLs", func(t *testing.T) {
		for _, u := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "http://"} {
			if err := OpenURL(u); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("OpenURL(%q): expected ErrInvalidInput, got %v", u, err)
			}
		}
	})

	t.Run("linux uses xdg-open", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenURL("https://example.com/poster.jpg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(started) != 2 || started[0] != "xdg-open" || started[1] != "https://example.com/poster.jpg" {
			t.Errorf("unexpected command %v", started)
		}
	})

	t.Run("darwin uses open", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		if err := OpenURL("http://example.com/a.jpg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if started[0] != "open" {
			t.Errorf("expected open, got %v", started)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenURL("http://example.com/a.jpg"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		startCmd = func(*exec.Cmd) error { return errors.New("boom") }
		if err := OpenURL("http://example.com/a.jpg"); err == nil || !strings.Contains(err.Error(), "failed to open browser") {
			t.Errorf("expected start failure, got %v", err)
		}
	})
}

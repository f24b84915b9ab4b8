package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_IsUsableBeforeInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Log.Info("discarded")
}

func TestInit_Levels(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"Info", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l := New()
			if err := l.Init(tc.level); err != nil {
				t.Fatalf("Init(%q) error: %v", tc.level, err)
			}
			if !l.Log.Core().Enabled(tc.want) {
				t.Errorf("level %v not enabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && l.Log.Core().Enabled(tc.want-1) {
				t.Errorf("level %v unexpectedly enabled", tc.want-1)
			}
		})
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestGetReturnsSharedLogger(t *testing.T) {
	first := Get()
	second := Get()
	if first != second {
		t.Error("expected Get to return the same logger instance")
	}
	if first.Info() == nil {
		t.Error("expected a usable logger")
	}
}

func TestHelpersAcceptFieldsAndErrors(t *testing.T) {
	// Exercise every package-level helper shape; a signature or receiver
	// mismatch fails this package at compile time.
	Info("informational", "key", "value")
	Warn("warning", "count", 3)
	Error("failure", errors.New("boom"), "key", "value")
	Debug("debugging", "key", "value")
}

func TestSetLevel(t *testing.T) {
	SetLevel("debug")
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}

	// Unknown levels fall back to info.
	SetLevel("nonsense")
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Errorf("level = %v, want info fallback", got)
	}
}

package logger

import "testing"

func TestLoggingWorksWithoutInit(t *testing.T) {
	// Library packages log on normal paths; callers that never ran Init
	// (including tests of those packages) must not crash.
	Debug("debug before init")
	Info("info before init")
	Warn("warn before init")
	Error("error before init")
}

func TestInitTogglesDebug(t *testing.T) {
	Init(true)
	if !IsDebugEnabled() {
		t.Error("expected debug enabled after Init(true)")
	}
	Debug("debug message while enabled")

	Init(false)
	if IsDebugEnabled() {
		t.Error("expected debug disabled after Init(false)")
	}
}

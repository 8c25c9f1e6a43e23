package logger

import (
	"os"
	"testing"
)

// https://no-color.org/: any non-empty NO_COLOR value disables color,
// regardless of its content.
func TestHasNoColorEnvironmentVariable_SetDisablesColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !hasNoColorEnvironmentVariable() {
		t.Fatal("expected NO_COLOR=1 to be detected")
	}
}

func TestHasNoColorEnvironmentVariable_UnsetLeavesColorAlone(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	if hasNoColorEnvironmentVariable() {
		t.Fatal("expected no NO_COLOR to report false")
	}
}

package obslog

import "testing"

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "not-a-level", Format: "console", OutputPath: "stdout"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger == nil {
		t.Fatal("New() returned nil logger")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: "json", OutputPath: "stdout"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger == nil {
		t.Fatal("New() returned nil logger")
	}
}

func TestNop_NeverErrors(t *testing.T) {
	if Nop() == nil {
		t.Fatal("Nop() returned nil")
	}
}

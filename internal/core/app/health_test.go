package app

import (
	"context"
	"testing"
)

func TestHealthService_Check(t *testing.T) {
	root := t.TempDir()
	writeProjectVenv(t, root)
	writeSource(t, root, "app.py", "import os\n")

	a := newTestApp(t, testConfig(), root)
	health := NewHealthService(a)

	status := health.Check(context.Background())
	if status.Status != "up" {
		t.Fatalf("expected up, got %q", status.Status)
	}
	if status.Components["report"] != "no refresh yet" {
		t.Fatalf("unexpected report component: %q", status.Components["report"])
	}
	if status.Components["environment"] != "venv" {
		t.Fatalf("unexpected environment component: %q", status.Components["environment"])
	}
	if _, ok := status.Components["journal"]; ok {
		t.Fatal("expected no journal component while history is disabled")
	}

	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	status = health.Check(context.Background())
	if status.Components["report"] != "ok (1 files, 1 modules, 0 missing)" {
		t.Fatalf("unexpected report component: %q", status.Components["report"])
	}
}

package app

import (
	"context"
	"testing"

	"depscope/internal/data/history"
)

func TestJournal_RecordsRefreshesAndInstalls(t *testing.T) {
	root := t.TempDir()
	writeProjectVenv(t, root)
	writeSource(t, root, "app.py", "import numpy\n")

	cfg := testConfig()
	cfg.History.Enabled = true

	a, err := New(cfg, testPaths(root))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	installed := a.Install(context.Background(), []string{"requests"}, nil)
	if !installed.Success {
		t.Fatalf("expected install success, got %+v", installed)
	}
	failed := a.Install(context.Background(), []string{"failpkg"}, nil)
	if failed.Success {
		t.Fatalf("expected install failure, got %+v", failed)
	}

	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := history.Open(testPaths(root).JournalPath)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer store.Close()

	records, err := store.Recent("", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 journal records, got %d", len(records))
	}

	if records[0].Kind != history.KindInstall || records[0].Success {
		t.Fatalf("expected newest record to be the failed install, got %+v", records[0])
	}
	if records[0].Error == "" {
		t.Fatal("expected failed install record to carry error text")
	}

	okInstall := records[1]
	if okInstall.Kind != history.KindInstall || !okInstall.Success {
		t.Fatalf("expected successful install record, got %+v", okInstall)
	}
	if okInstall.ID != installed.OperationID {
		t.Fatalf("expected record id %q, got %q", installed.OperationID, okInstall.ID)
	}
	if len(okInstall.Packages) != 1 || okInstall.Packages[0] != "requests" {
		t.Fatalf("unexpected packages on install record: %v", okInstall.Packages)
	}
	if okInstall.LineCount != 2 {
		t.Fatalf("expected 2 streamed lines on install record, got %d", okInstall.LineCount)
	}

	refresh := records[2]
	if refresh.Kind != history.KindRefresh || !refresh.Success {
		t.Fatalf("expected refresh record, got %+v", refresh)
	}
	if refresh.FileCount != 1 || refresh.MissingCount != 1 {
		t.Fatalf("unexpected refresh counts: %+v", refresh)
	}
	if refresh.Environment != "venv" {
		t.Fatalf("expected venv environment label, got %q", refresh.Environment)
	}
}

func TestJournal_DisabledSkipsStoreAndQueue(t *testing.T) {
	root := t.TempDir()
	writeProjectVenv(t, root)
	writeSource(t, root, "app.py", "import os\n")

	a := newTestApp(t, testConfig(), root)
	if a.journalQueue != nil || a.journalStore != nil {
		t.Fatal("expected journal to stay unconfigured when history is disabled")
	}

	// Operations still run without a journal.
	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result := a.Install(context.Background(), nil, nil); !result.Success {
		t.Fatalf("expected noop install success, got %+v", result)
	}
}

func TestJournal_NoopInstallLeavesNoRecord(t *testing.T) {
	root := t.TempDir()
	writeProjectVenv(t, root)
	writeSource(t, root, "app.py", "import os\n")

	cfg := testConfig()
	cfg.History.Enabled = true

	a, err := New(cfg, testPaths(root))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if result := a.Install(context.Background(), nil, nil); !result.Success {
		t.Fatalf("expected noop install success, got %+v", result)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := history.Open(testPaths(root).JournalPath)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer store.Close()

	records, err := store.Recent(history.KindInstall, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no install records for a noop, got %v", records)
	}
}

package savestate

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_RunLifecycle(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun(42, 100)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run ID")
	}

	if err := db.RecordChange(runID, 120, 100, 300, "multiply"); err != nil {
		t.Fatalf("RecordChange failed: %v", err)
	}
	if err := db.RecordChange(runID, 600, 300, 240, "shrink"); err != nil {
		t.Fatalf("RecordChange failed: %v", err)
	}

	if err := db.FinishRun(runID, 240, 300, 3600); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	events, err := db.RunEvents(runID)
	if err != nil {
		t.Fatalf("RunEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Tick != 120 || events[0].OldSize != 100 || events[0].NewSize != 300 || events[0].Cause != "multiply" {
		t.Errorf("first event mismatch: %+v", events[0])
	}
	if events[1].Tick != 600 || events[1].NewSize != 240 || events[1].Cause != "shrink" {
		t.Errorf("second event mismatch: %+v", events[1])
	}
}

func TestDB_LastFinalSize(t *testing.T) {
	db := openTestDB(t)

	// No runs yet
	if _, ok, err := db.LastFinalSize(); err != nil {
		t.Fatalf("LastFinalSize failed: %v", err)
	} else if ok {
		t.Error("expected no finished run in empty database")
	}

	// Unfinished run does not count
	if _, err := db.BeginRun(1, 100); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if _, ok, err := db.LastFinalSize(); err != nil {
		t.Fatalf("LastFinalSize failed: %v", err)
	} else if ok {
		t.Error("expected unfinished run to be ignored")
	}

	// Finished run is found
	runID, err := db.BeginRun(2, 100)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := db.FinishRun(runID, 170, 300, 1800); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	size, ok, err := db.LastFinalSize()
	if err != nil {
		t.Fatalf("LastFinalSize failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a finished run")
	}
	if size != 170 {
		t.Errorf("expected last final size 170, got %d", size)
	}
}

func TestDB_RunEventsEmpty(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun(7, 10)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	events, err := db.RunEvents(runID)
	if err != nil {
		t.Fatalf("RunEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events for fresh run, got %d", len(events))
	}
}

func TestDB_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	runID, err := db.BeginRun(9, 50)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := db.FinishRun(runID, 80, 90, 600); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	size, ok, err := reopened.LastFinalSize()
	if err != nil {
		t.Fatalf("LastFinalSize failed: %v", err)
	}
	if !ok || size != 80 {
		t.Errorf("expected persisted final size 80, got %d (ok=%v)", size, ok)
	}
}

package search

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTracker_ReserveUpToLimit(t *testing.T) {
	tracker := NewTracker("")
	tracker.Register("serper", 3, WindowMonthly)

	for i := 0; i < 3; i++ {
		if !tracker.TryReserve("serper") {
			t.Fatalf("Expected reservation %d to succeed", i+1)
		}
	}
	if tracker.TryReserve("serper") {
		t.Error("Expected reservation beyond the limit to fail")
	}

	status := tracker.Status()["serper"]
	if status.Used != 3 {
		t.Errorf("Expected 3 used, got %d", status.Used)
	}
	if status.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", status.Remaining)
	}
}

func TestTracker_UnknownProvider(t *testing.T) {
	tracker := NewTracker("")
	if tracker.TryReserve("nope") {
		t.Error("Expected reservation for unknown provider to fail")
	}
}

func TestTracker_UnlimitedProvider(t *testing.T) {
	tracker := NewTracker("")
	tracker.Register("scraper", 0, WindowNone)

	for i := 0; i < 100; i++ {
		if !tracker.TryReserve("scraper") {
			t.Fatal("Expected unlimited provider to always grant")
		}
	}
	if got := tracker.Status()["scraper"].Remaining; got != -1 {
		t.Errorf("Expected remaining -1 for unlimited provider, got %d", got)
	}
}

func TestTracker_ConcurrentReservationsNeverOvershoot(t *testing.T) {
	const limit = 50
	const callers = 200

	tracker := NewTracker("")
	tracker.Register("brave", limit, WindowDaily)

	var granted int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if tracker.TryReserve("brave") {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if granted != limit {
		t.Errorf("Expected exactly %d grants, got %d", limit, granted)
	}
	if used := tracker.Status()["brave"].Used; used != limit {
		t.Errorf("Expected %d used, got %d", limit, used)
	}
}

func TestTracker_FailureRefundsQuota(t *testing.T) {
	tracker := NewTracker("")
	tracker.Register("serper", 1, WindowMonthly)

	if !tracker.TryReserve("serper") {
		t.Fatal("Expected first reservation to succeed")
	}
	tracker.RecordFailure("serper")

	if !tracker.TryReserve("serper") {
		t.Error("Expected reservation to succeed after failure refund")
	}

	status := tracker.Status()["serper"]
	if status.Failures != 1 {
		t.Errorf("Expected 1 failure recorded, got %d", status.Failures)
	}
	if status.Used != 1 {
		t.Errorf("Expected 1 used after refund and re-reserve, got %d", status.Used)
	}
}

func TestTracker_WindowResetOnPeriodRollover(t *testing.T) {
	tracker := NewTracker("")

	now := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	tracker.Register("searxng", 2, WindowDaily)

	if !tracker.TryReserve("searxng") || !tracker.TryReserve("searxng") {
		t.Fatal("Expected both reservations within the day to succeed")
	}
	if tracker.TryReserve("searxng") {
		t.Fatal("Expected third reservation to fail")
	}

	// Cross midnight: the counter resets lazily on next use
	now = now.Add(2 * time.Hour)
	if !tracker.TryReserve("searxng") {
		t.Error("Expected reservation to succeed after the daily window rolled over")
	}

	status := tracker.Status()["searxng"]
	if status.Used != 1 {
		t.Errorf("Expected 1 used in the new period, got %d", status.Used)
	}
	if status.Period != "2025-04-01" {
		t.Errorf("Expected period 2025-04-01, got %s", status.Period)
	}
}

func TestTracker_MonthlyWindowSurvivesDayChange(t *testing.T) {
	tracker := NewTracker("")

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	tracker.Register("serper", 10, WindowMonthly)

	tracker.TryReserve("serper")
	now = now.AddDate(0, 0, 15)
	tracker.TryReserve("serper")

	if used := tracker.Status()["serper"].Used; used != 2 {
		t.Errorf("Expected monthly counter to persist across days, got %d used", used)
	}
}

func TestTracker_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")

	tracker := NewTracker(path)
	tracker.Register("serper", 100, WindowMonthly)
	tracker.TryReserve("serper")
	tracker.TryReserve("serper")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected snapshot file to exist: %v", err)
	}

	// A fresh tracker in the same period restores the counts
	restored := NewTracker(path)
	restored.Register("serper", 100, WindowMonthly)

	if used := restored.Status()["serper"].Used; used != 2 {
		t.Errorf("Expected restored tracker to report 2 used, got %d", used)
	}
}

func TestTracker_SnapshotFromExpiredPeriodDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")

	stale := map[string]UsageStatus{
		"searxng": {Used: 99, Period: "2020-01-01"},
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	tracker := NewTracker(path)
	tracker.Register("searxng", 100, WindowDaily)

	if used := tracker.Status()["searxng"].Used; used != 0 {
		t.Errorf("Expected stale snapshot to be discarded, got %d used", used)
	}
}

func TestTracker_CorruptSnapshotIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	tracker := NewTracker(path)
	tracker.Register("serper", 5, WindowMonthly)

	if !tracker.TryReserve("serper") {
		t.Error("Expected tracker to work despite corrupt snapshot")
	}
}

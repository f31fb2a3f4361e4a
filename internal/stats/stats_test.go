package stats

import (
	"testing"
	"time"
)

func TestRenderStatsSnapshotPercentiles(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		stats.Record("html", time.Duration(us)*time.Microsecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinUs != 100 || snap.MaxUs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestRenderStatsByFormat(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	stats.Record("tree", time.Microsecond)
	stats.Record("html", time.Microsecond)
	stats.Record("html", time.Microsecond)

	snap := stats.Snapshot()
	if snap.ByFormat["html"] != 2 || snap.ByFormat["tree"] != 1 {
		t.Errorf("expected html=2 tree=1, got %v", snap.ByFormat)
	}
}

func TestRenderStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := NewRenderStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record("tree", 100*time.Microsecond)
	now = now.Add(2 * time.Minute)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	if snap.ByFormat == nil {
		t.Fatal("expected non-nil format map")
	}

	stats.Record("tree", 200*time.Microsecond)
	snap = stats.Snapshot()
	if snap.Count != 1 || snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected one sample of 200, got %+v", snap)
	}
}

func TestRenderStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewRenderStats(time.Hour)
	stats.Record("text", -time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/chatmark/internal/doctree"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestTranscriptHash(t *testing.T) {
	a := TranscriptHash("chat", []string{"ab", "c"})
	if a != TranscriptHash("chat", []string{"ab", "c"}) {
		t.Error("expected stable hash")
	}
	if a == TranscriptHash("chat", []string{"a", "bc"}) {
		t.Error("expected message boundaries to change the hash")
	}
	if a == TranscriptHash("commonmark", []string{"ab", "c"}) {
		t.Error("expected dialect to change the hash")
	}
	if a != TranscriptHash(" Chat ", []string{"ab", "c"}) {
		t.Error("expected dialect spelling not to change the hash")
	}
}

func TestNewJob_CanonicalDialect(t *testing.T) {
	job := NewJob("j1", " CommonMark", []string{"a"})
	if job.Dialect != "commonmark" {
		t.Errorf("expected dialect %q, got %q", "commonmark", job.Dialect)
	}
	if job.ContentHash != TranscriptHash("commonmark", []string{"a"}) {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("j1", "chat", []string{"a", "b"})
	snap := job.Snapshot()
	if snap.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, snap.Status)
	}
	if snap.Progress.TotalMessages != 2 {
		t.Errorf("expected 2 total messages, got %d", snap.Progress.TotalMessages)
	}
	if snap.ContentHash != TranscriptHash("chat", []string{"a", "b"}) {
		t.Errorf("unexpected content hash %q", snap.ContentHash)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", "chat", nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusRendering, "rendering"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob("err-test", "chat", nil)
	job.AddError("message 3 failed")
	job.AddError("message 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "message 3 failed" {
		t.Errorf("expected first error %q, got %q", "message 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_ResultsOnlyWhenCompleted(t *testing.T) {
	job := NewJob("res-test", "chat", []string{"x"})
	job.AddResult(Result{Index: 0, Document: doctree.Document{}, HTML: "<p>x</p>"})

	snap := job.Snapshot()
	if snap.Progress.MessagesRendered != 1 {
		t.Errorf("expected 1 rendered message, got %d", snap.Progress.MessagesRendered)
	}
	if snap.Results != nil {
		t.Errorf("expected no results before completion, got %d", len(snap.Results))
	}

	job.SetStatus(StatusCompleted, "done")
	snap = job.Snapshot()
	if len(snap.Results) != 1 || snap.Results[0].HTML != "<p>x</p>" {
		t.Errorf("expected completed results, got %#v", snap.Results)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := NewJob("snap-test", "chat", nil)
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(NewJob("store-1", "chat", nil))

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)
	store.Put(NewJob("old", "chat", nil))

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)
	store.Put(NewJob("new", "chat", nil))
	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestNewJobID(t *testing.T) {
	seen := map[string]bool{}
	var prev string
	for i := 0; i < 1000; i++ {
		id := NewJobID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
		}
		if strings.Trim(id, crockford) != "" {
			t.Fatalf("expected crockford alphabet only, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id[:10] < prev[:10] {
			t.Errorf("expected time prefix to be monotonic: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestNewJobID_EncodesTimestamp(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	idMu.Lock()
	idClock = func() time.Time { return at }
	idMu.Unlock()
	t.Cleanup(func() {
		idMu.Lock()
		idClock = time.Now
		idMu.Unlock()
	})

	id := NewJobID()
	var ms int64
	for _, c := range id[:10] {
		ms = ms<<5 | int64(strings.IndexRune(crockford, c))
	}
	if ms != at.UnixMilli() {
		t.Errorf("expected timestamp %d, got %d", at.UnixMilli(), ms)
	}
}

func TestEncodeCrockford(t *testing.T) {
	var b [16]byte
	if got := encodeCrockford(b); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}
	for i := range b {
		b[i] = 0xff
	}
	// 128 one bits: the first digit holds three of them.
	if got := encodeCrockford(b); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected 7ZZ..., got %q", got)
	}
}

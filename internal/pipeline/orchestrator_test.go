package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/chatmark/internal/cache"
	"github.com/dgallion1/chatmark/internal/config"
	"github.com/dgallion1/chatmark/internal/render"
	"github.com/dgallion1/chatmark/internal/stats"
	"github.com/dgallion1/chatmark/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:  2,
		MaxQueueSize: 10,
		JobTTL:       time.Hour,
		StatsWindow:  time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForJob(t *testing.T, o *Orchestrator, id string) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := o.GetJob(id).Snapshot()
		if snap.Status == StatusCompleted || snap.Status == StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return JobSnapshot{}
}

func TestOrchestrator_RendersAndStores(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	rs := stats.NewRenderStats(time.Hour)
	o := NewOrchestrator(testConfig(), cache.New(16), render.NewHTMLRenderer(nil), st, rs, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	messages := []string{"*Memory*: remember this", "# Done\n\n**ok**"}
	job, err := o.Submit("chat", messages)
	if err != nil {
		t.Fatal(err)
	}
	snap := waitForJob(t, o, job.ID)
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Fatalf("expected completed/done, got %s/%s (%v)", snap.Status, snap.Phase, snap.Progress.Errors)
	}
	if len(snap.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(snap.Results))
	}
	if snap.Results[0].Document.Semantic == nil {
		t.Error("expected first message to be a semantic block")
	}
	if !strings.Contains(snap.Results[1].HTML, "<strong>ok</strong>") {
		t.Errorf("expected bold html, got %q", snap.Results[1].HTML)
	}
	if rs.Snapshot().ByFormat["batch"] != 2 {
		t.Errorf("expected 2 batch renders recorded, got %v", rs.Snapshot().ByFormat)
	}

	rec, err := st.Get(snap.ContentHash)
	if err != nil {
		t.Fatalf("expected stored transcript: %v", err)
	}
	if len(rec.Messages) != 2 || rec.Dialect != "chat" {
		t.Errorf("unexpected record %#v", rec)
	}

	// The same transcript again is recognized as already stored.
	again, err := o.Submit("chat", messages)
	if err != nil {
		t.Fatal(err)
	}
	if snap := waitForJob(t, o, again.ID); snap.Phase != "already_stored" {
		t.Errorf("expected already_stored, got %q", snap.Phase)
	}
}

func TestOrchestrator_WithoutStore(t *testing.T) {
	o := NewOrchestrator(testConfig(), cache.New(4), render.NewHTMLRenderer(nil), nil, nil, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job, err := o.Submit("commonmark", []string{"*em*"})
	if err != nil {
		t.Fatal(err)
	}
	snap := waitForJob(t, o, job.ID)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", snap.Status)
	}
	if !strings.Contains(snap.Results[0].HTML, "<em>em</em>") {
		t.Errorf("expected commonmark emphasis, got %q", snap.Results[0].HTML)
	}
}

func TestOrchestrator_UnknownDialectFails(t *testing.T) {
	o := NewOrchestrator(testConfig(), cache.New(4), render.NewHTMLRenderer(nil), nil, nil, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job, err := o.Submit("rst", []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	snap := waitForJob(t, o, job.ID)
	if snap.Status != StatusFailed || len(snap.Progress.Errors) != 1 {
		t.Errorf("expected failure with one error, got %s %v", snap.Status, snap.Progress.Errors)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, cache.New(4), render.NewHTMLRenderer(nil), nil, nil, discardLogger())

	if _, err := o.Submit("chat", []string{"a"}); err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	job, err := o.Submit("chat", []string{"b"})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %s", job.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	if _, err := o.Submit("chat", []string{"c"}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestWorker_CanceledContext(t *testing.T) {
	w := NewWorker(cache.New(4), render.NewHTMLRenderer(nil), nil, stats.NewRenderStats(time.Hour), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewJob("c1", "chat", []string{"a", "b"})
	w.Process(ctx, job)
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Progress.MessagesRendered != 0 {
		t.Errorf("expected failed job with nothing rendered, got %s %d", snap.Status, snap.Progress.MessagesRendered)
	}
}

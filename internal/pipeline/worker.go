package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/chatmark/internal/cache"
	"github.com/dgallion1/chatmark/internal/render"
	"github.com/dgallion1/chatmark/internal/stats"
	"github.com/dgallion1/chatmark/internal/store"
)

// Worker renders one transcript job at a time.
type Worker struct {
	docs  *cache.DocumentCache
	html  *render.HTMLRenderer
	store *store.Store
	stats *stats.RenderStats
	log   *slog.Logger
}

func NewWorker(docs *cache.DocumentCache, html *render.HTMLRenderer, st *store.Store, rs *stats.RenderStats, log *slog.Logger) *Worker {
	return &Worker{docs: docs, html: html, store: st, stats: rs, log: log}
}

// Process renders every message of the job, then persists the transcript
// when a store is configured.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "dialect", job.Dialect)

	// Phase 1: Render
	job.SetStatus(StatusRendering, "rendering")
	p, err := w.docs.ForDialect(job.Dialect)
	if err != nil {
		log.Error("unsupported dialect", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	messages := job.Messages()
	for i, msg := range messages {
		if err := ctx.Err(); err != nil {
			log.Warn("job canceled", "rendered", i)
			job.AddError(fmt.Sprintf("canceled: %s", err))
			job.SetStatus(StatusFailed, "rendering")
			return
		}
		start := time.Now()
		doc := p.Parse(msg)
		html, err := w.html.Render(doc)
		w.stats.Since("batch", start)
		if err != nil {
			log.Error("render failed", "message", i, "error", err)
			job.AddError(fmt.Sprintf("message %d: %s", i, err))
			job.SetStatus(StatusFailed, "rendering")
			return
		}
		job.AddResult(Result{Index: i, Document: doc, HTML: html})
	}
	log.Info("rendered transcript", "messages", len(messages))

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2: Store
	job.SetStatus(StatusStoring, "storing")
	exists, err := w.store.Has(job.ContentHash)
	if err != nil {
		log.Warn("dedup check failed, storing anyway", "error", err)
	} else if exists {
		log.Info("transcript already stored", "hash", job.ContentHash)
		job.SetStatus(StatusCompleted, "already_stored")
		return
	}

	err = w.store.Put(store.Record{
		Hash:      job.ContentHash,
		Dialect:   p.Dialect,
		Messages:  messages,
		CreatedAt: job.CreatedAt,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

package pipeline

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/chatmark/internal/doctree"
	"github.com/dgallion1/chatmark/internal/parser"
)

// JobStatus represents the state of a batch render job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRendering JobStatus = "rendering"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the rendering of one transcript.
type Job struct {
	mu sync.Mutex

	ID      string
	Dialect string

	Status   JobStatus
	Phase    string
	Progress Progress

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	messages []string
	results  []Result
}

// Progress tracks how many messages have been rendered.
type Progress struct {
	TotalMessages    int      `json:"total_messages"`
	MessagesRendered int      `json:"messages_rendered"`
	Errors           []string `json:"errors"`
}

// Result is one rendered message of a transcript.
type Result struct {
	Index    int              `json:"index"`
	Document doctree.Document `json:"document"`
	HTML     string           `json:"html"`
}

// NewJob creates a queued job for a transcript. The content hash covers
// the dialect and every message, so identical transcripts share it.
func NewJob(id, dialect string, messages []string) *Job {
	dialect = parser.CanonicalDialect(dialect)
	now := time.Now()
	return &Job{
		ID:          id,
		Dialect:     dialect,
		Status:      StatusQueued,
		Phase:       "queued",
		Progress:    Progress{TotalMessages: len(messages)},
		ContentHash: TranscriptHash(dialect, messages),
		CreatedAt:   now,
		UpdatedAt:   now,
		messages:    messages,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// AddResult stores a rendered message and advances progress.
func (j *Job) AddResult(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, r)
	j.Progress.MessagesRendered++
	j.UpdatedAt = time.Now()
}

// Messages returns the transcript being rendered.
func (j *Job) Messages() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.messages
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Results are
// included once the job has completed.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Dialect     string    `json:"dialect"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Results     []Result  `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	snap := JobSnapshot{
		ID:          j.ID,
		Dialect:     j.Dialect,
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Progress: Progress{
			TotalMessages:    j.Progress.TotalMessages,
			MessagesRendered: j.Progress.MessagesRendered,
			Errors:           errs,
		},
	}
	if j.Status == StatusCompleted {
		snap.Results = append([]Result(nil), j.results...)
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// TranscriptHash hashes a dialect and its messages. Messages are
// length-prefixed so boundaries cannot shift between transcripts.
func TranscriptHash(dialect string, messages []string) string {
	var sb strings.Builder
	sb.WriteString(parser.CanonicalDialect(dialect))
	for _, m := range messages {
		fmt.Fprintf(&sb, "\x00%d:%s", len(m), m)
	}
	return ContentHashHex([]byte(sb.String()))
}

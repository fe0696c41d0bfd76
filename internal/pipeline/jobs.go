package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/dgallion1/bookbind/internal/render"
	cache "github.com/patrickmn/go-cache"
)

// Status is the state of a generation job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusFetching  Status = "fetching"
	StatusRendering Status = "rendering"
	StatusCompleted Status = "completed"
	StatusNoContent Status = "no_content"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusNoContent || s == StatusFailed
}

// ProgressUpdate is one phase transition, pushed to subscribers. Updates
// replace each other; a slow subscriber misses intermediate states, it
// never queues them.
type ProgressUpdate struct {
	Status  Status `json:"status"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// Job tracks one document generation from enqueue to artifact.
type Job struct {
	mu sync.Mutex

	ID        string
	BookID    int
	BookTitle string
	Format    render.Format

	Status  Status
	Phase   string
	Message string
	Summary booktree.Summary
	Error   string

	CreatedAt time.Time
	UpdatedAt time.Time

	document []byte
	subs     []chan ProgressUpdate
}

func NewJob(id string, bookID int, bookTitle string, format render.Format) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		BookID:    bookID,
		BookTitle: bookTitle,
		Format:    format,
		Status:    StatusQueued,
		Phase:     "queued",
		Message:   "waiting for a worker",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus moves the job to a new status and phase.
func (j *Job) SetStatus(status Status, phase, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.Message = message
	j.UpdatedAt = time.Now()
	j.notifyLocked()
}

// SetProgress updates phase/message without changing the status. Wired
// as the fetcher's ProgressFunc.
func (j *Job) SetProgress(phase, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = phase
	j.Message = message
	j.UpdatedAt = time.Now()
	j.notifyLocked()
}

// Complete stores the rendered artifact and marks the job done.
func (j *Job) Complete(document []byte, summary booktree.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.document = document
	j.Summary = summary
	j.Status = StatusCompleted
	j.Phase = "done"
	j.Message = "document ready"
	j.UpdatedAt = time.Now()
	j.notifyLocked()
}

// Fail marks the job failed. No partial document is kept.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Error = err.Error()
	j.Status = StatusFailed
	j.Phase = "failed"
	j.Message = j.Error
	j.UpdatedAt = time.Now()
	j.notifyLocked()
}

// SetNoContent marks a tree that came back with zero chapters: a valid
// fetch, but nothing to print.
func (j *Job) SetNoContent() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusNoContent
	j.Phase = "done"
	j.Message = "no content found for this book"
	j.UpdatedAt = time.Now()
	j.notifyLocked()
}

// Document returns the artifact, if the job completed.
func (j *Job) Document() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, false
	}
	return j.document, true
}

// Subscribe registers a progress listener. The current state is
// delivered immediately; the channel closes after a terminal update.
// The returned cancel func must be called when the listener goes away.
func (j *Job) Subscribe() (<-chan ProgressUpdate, func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	ch := make(chan ProgressUpdate, 16)
	ch <- ProgressUpdate{Status: j.Status, Phase: j.Phase, Message: j.Message}
	if j.Status.Terminal() {
		close(ch)
		return ch, func() {}
	}
	j.subs = append(j.subs, ch)
	cancel := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		for i, c := range j.subs {
			if c == ch {
				j.subs = append(j.subs[:i], j.subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

func (j *Job) notifyLocked() {
	u := ProgressUpdate{Status: j.Status, Phase: j.Phase, Message: j.Message}
	for _, ch := range j.subs {
		select {
		case ch <- u:
		default:
		}
	}
	if j.Status.Terminal() {
		for _, ch := range j.subs {
			close(ch)
		}
		j.subs = nil
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string           `json:"job_id"`
	BookID    int              `json:"book_id"`
	BookTitle string           `json:"book_title,omitempty"`
	Format    render.Format    `json:"format"`
	Status    Status           `json:"status"`
	Phase     string           `json:"phase"`
	Message   string           `json:"message"`
	Summary   booktree.Summary `json:"summary"`
	Error     string           `json:"error,omitempty"`
}

func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		BookID:    j.BookID,
		BookTitle: j.BookTitle,
		Format:    j.Format,
		Status:    j.Status,
		Phase:     j.Phase,
		Message:   j.Message,
		Summary:   j.Summary,
		Error:     j.Error,
	}
}

// JobStore keeps jobs with TTL eviction.
type JobStore struct {
	c *cache.Cache
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{c: cache.New(ttl, ttl)}
}

func (s *JobStore) Put(job *Job) {
	s.c.Set(job.ID, job, cache.DefaultExpiration)
}

func (s *JobStore) Get(id string) *Job {
	if v, ok := s.c.Get(id); ok {
		return v.(*Job)
	}
	return nil
}

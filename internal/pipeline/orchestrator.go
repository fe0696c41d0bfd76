package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/dgallion1/bookbind/internal/config"
	"github.com/dgallion1/bookbind/internal/render"
)

// Orchestrator runs generation jobs on a small worker pool. Each job is
// strictly sequential internally: fetch the tree, then render it.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	fetcher *booktree.Fetcher
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewOrchestrator(cfg config.Config, fetcher *booktree.Fetcher, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		fetcher: fetcher,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}
}

// Stop gracefully shuts down the workers. Safe to call once the HTTP
// server has stopped accepting requests; later Submits fail cleanly.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues a new job.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		err := fmt.Errorf("orchestrator is shutting down")
		job.Fail(err)
		return err
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail(fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize))
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID, or nil.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	job.SetStatus(StatusFetching, booktree.PhaseChapters, "fetching chapters")

	tree, err := o.fetcher.FetchTree(ctx, job.BookID, job.BookTitle, job.SetProgress)
	if err != nil {
		o.log.Error("tree fetch failed", "job", job.ID, "book", job.BookID, "error", err)
		job.Fail(err)
		return
	}

	if len(tree.Chapters) == 0 {
		o.log.Info("book has no content", "job", job.ID, "book", job.BookID)
		job.SetNoContent()
		return
	}

	job.SetStatus(StatusRendering, "render", "formatting document")
	doc, err := render.Render(tree, job.Format)
	if err != nil {
		o.log.Error("render failed", "job", job.ID, "book", job.BookID, "format", job.Format, "error", err)
		job.Fail(err)
		return
	}

	job.Complete(doc, tree.Summary())
	o.log.Info("document generated", "job", job.ID, "book", job.BookID,
		"format", job.Format, "bytes", len(doc))
}

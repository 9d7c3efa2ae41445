package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
)

const queueCapacity = 300

// jobTimeout bounds a single job. Downloads of long videos dominate, so
// the limit is generous.
const jobTimeout = 10 * time.Minute

// Job is one enqueued unit of work. The result is published on done when
// the job finishes; synchronous callers read it through Wait.
type Job struct {
	ID     string
	Stage  Stage
	ItemID string

	task TaskInterface
	done chan Result
}

// Wait blocks until the job finishes or the timeout elapses.
func (j *Job) Wait(timeout time.Duration) (Result, error) {
	select {
	case result := <-j.done:
		return result, nil
	case <-time.After(timeout):
		return Result{}, fmt.Errorf("timed out waiting for job %s", j.ID)
	}
}

type stageQueue struct {
	jobs    chan *Job
	workers int
	limiter *rate.Limiter
}

var _ SchedulerInterface = (*Scheduler)(nil)

// Scheduler runs a worker pool per stage. Each stage has its own queue so a
// backlog of downloads never starves transcription, and the download queue
// is rate limited to stay under the platform's tolerance.
type Scheduler struct {
	resources *Resources
	itemRepo  database.ItemRepository
	blobRepo  database.BlobRepository
	tagRepo   database.TagRepository
	queues    map[Stage]*stageQueue
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewScheduler(resources *Resources, itemRepo database.ItemRepository,
	blobRepo database.BlobRepository, tagRepo database.TagRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	// A non-positive rate disables limiting entirely.
	var downloadLimiter *rate.Limiter
	if c.DownloadRatePerMin > 0 {
		downloadLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.DownloadRatePerMin)), 1)
	}

	return &Scheduler{
		resources: resources,
		itemRepo:  itemRepo,
		blobRepo:  blobRepo,
		tagRepo:   tagRepo,
		queues: map[Stage]*stageQueue{
			StageDownload: {
				jobs:    make(chan *Job, queueCapacity),
				workers: c.DownloadWorkers,
				limiter: downloadLimiter,
			},
			StageTranscribe: {
				jobs:    make(chan *Job, queueCapacity),
				workers: c.TranscribeWorkers,
			},
			StageExtractText: {
				jobs:    make(chan *Job, queueCapacity),
				workers: c.ExtractTextWorkers,
			},
			StageAutoTag: {
				jobs:    make(chan *Job, queueCapacity),
				workers: c.AutoTagWorkers,
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) Start() {
	for stage, queue := range s.queues {
		for i := 0; i < queue.workers; i++ {
			s.wg.Add(1)
			go s.worker(stage, i, queue)
		}
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	for _, queue := range s.queues {
		close(queue.jobs)
	}
}

// Enqueue submits an item to the given stage queue. It never blocks: a full
// queue is an error and the item is picked up by a later sweep instead.
func (s *Scheduler) Enqueue(stage Stage, itemID string) (*Job, error) {
	queue, ok := s.queues[stage]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	task := s.newTask(stage, itemID)
	job := &Job{
		ID:     task.GetID(),
		Stage:  stage,
		ItemID: itemID,
		task:   task,
		done:   make(chan Result, 1),
	}

	select {
	case queue.jobs <- job:
		return job, nil
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	default:
		return nil, fmt.Errorf("%s queue is full", stage)
	}
}

func (s *Scheduler) newTask(stage Stage, itemID string) TaskInterface {
	switch stage {
	case StageDownload:
		return NewDownloadTask(itemID, s.resources, s.itemRepo)
	case StageTranscribe:
		return NewTranscribeTask(itemID, s.resources, s.itemRepo, s.blobRepo)
	case StageExtractText:
		return NewExtractTextTask(itemID, s.resources, s.itemRepo, s.blobRepo)
	case StageAutoTag:
		return NewAutoTagTask(itemID, s.resources, s.itemRepo, s.tagRepo)
	default:
		panic(fmt.Sprintf("unknown stage %q", stage))
	}
}

func (s *Scheduler) worker(stage Stage, id int, queue *stageQueue) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case job, ok := <-queue.jobs:
			if !ok {
				return
			}
			if queue.limiter != nil {
				if err := queue.limiter.Wait(s.ctx); err != nil {
					job.done <- Failed(FailGeneric, "scheduler stopped before job started")
					return
				}
			}
			s.executeJob(stage, id, job)
		}
	}
}

// executeJob runs one job to completion. The job context is detached from
// the scheduler context so an in-flight download finishes during shutdown;
// workers stop picking up new jobs instead.
func (s *Scheduler) executeJob(stage Stage, workerID int, job *Job) {
	job.task.Start()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result := s.runTask(ctx, job.task)
	job.done <- result

	switch result.Status {
	case StatusFailed:
		slog.Error("Task failed",
			"stage", string(stage),
			"worker_id", workerID,
			"item_id", job.ItemID,
			"kind", string(result.Kind),
			"duration", job.task.GetDuration(),
			"error", result.Message)
	case StatusSkipped:
		slog.Debug("Task skipped",
			"stage", string(stage),
			"item_id", job.ItemID,
			"reason", result.Message)
	default:
		slog.Info("Task completed",
			"stage", string(stage),
			"worker_id", workerID,
			"item_id", job.ItemID,
			"duration", job.task.GetDuration(),
			"bytes", result.Bytes,
			"count", result.Count)
	}
}

func (s *Scheduler) runTask(ctx context.Context, task TaskInterface) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed(FailGeneric, "task panicked: %v", r)
		}
	}()

	return task.Execute(ctx)
}

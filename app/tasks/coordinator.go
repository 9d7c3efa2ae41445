package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
)

// Coordinator periodically scans the store for items whose stage flags say
// work is pending and feeds them to the scheduler. All stage ordering lives
// in the pending queries; the coordinator itself is just a sweep loop.
type Coordinator struct {
	itemRepo  database.ItemRepository
	scheduler SchedulerInterface
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewCoordinator(itemRepo database.ItemRepository, scheduler SchedulerInterface) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		itemRepo:  itemRepo,
		scheduler: scheduler,
		interval:  time.Duration(cfg.Get().SchedulerInterval) * time.Second,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Coordinator) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.sweep()

		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Coordinator) Stop() {
	c.cancel()
	c.wg.Wait()
}

func (c *Coordinator) sweep() {
	for _, stage := range Stages {
		found, queued, err := c.ScanAndEnqueue(stage)
		if err != nil {
			slog.Error("Stage scan failed", "stage", string(stage), "error", err)
			continue
		}
		if found > 0 {
			slog.Info("Stage scan completed", "stage", string(stage), "found", found, "queued", queued)
		}
	}
}

// ScanAndEnqueue lists every item pending for the stage and enqueues each
// one. A full queue stops the scan early; the remainder is picked up on the
// next sweep.
func (c *Coordinator) ScanAndEnqueue(stage Stage) (int, int, error) {
	ids, err := c.listPending(stage)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pending items: %w", err)
	}

	queued := 0
	for _, id := range ids {
		if _, err := c.scheduler.Enqueue(stage, id); err != nil {
			slog.Warn("Failed to enqueue item", "stage", string(stage), "item_id", id, "error", err)
			break
		}
		queued++
	}

	return len(ids), queued, nil
}

func (c *Coordinator) listPending(stage Stage) ([]string, error) {
	switch stage {
	case StageDownload:
		return c.itemRepo.ListPendingDownload()
	case StageTranscribe:
		return c.itemRepo.ListPendingTranscription()
	case StageExtractText:
		return c.itemRepo.ListPendingTextExtraction()
	case StageAutoTag:
		return c.itemRepo.ListPendingAutoTag()
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
}

package tasks

import (
	"fmt"
	"testing"
)

type fakeScheduler struct {
	enqueued map[Stage][]string
	failAt   int
	calls    int
}

var _ SchedulerInterface = (*fakeScheduler)(nil)

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{enqueued: make(map[Stage][]string), failAt: -1}
}

func (f *fakeScheduler) Start() {}
func (f *fakeScheduler) Stop()  {}

func (f *fakeScheduler) Enqueue(stage Stage, itemID string) (*Job, error) {
	f.calls++
	if f.failAt >= 0 && f.calls > f.failAt {
		return nil, fmt.Errorf("%s queue is full", stage)
	}
	f.enqueued[stage] = append(f.enqueued[stage], itemID)
	return &Job{Stage: stage, ItemID: itemID, done: make(chan Result, 1)}, nil
}

func TestScanAndEnqueue(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	itemRepo.pendingDownload = []string{"a", "b"}
	itemRepo.pendingTranscribe = []string{"c"}
	scheduler := newFakeScheduler()

	c := NewCoordinator(itemRepo, scheduler)

	found, queued, err := c.ScanAndEnqueue(StageDownload)
	if err != nil {
		t.Fatalf("ScanAndEnqueue failed: %v", err)
	}
	if found != 2 || queued != 2 {
		t.Errorf("Expected found=2 queued=2, got found=%d queued=%d", found, queued)
	}
	if len(scheduler.enqueued[StageDownload]) != 2 {
		t.Errorf("Expected 2 download jobs, got %v", scheduler.enqueued[StageDownload])
	}

	found, queued, err = c.ScanAndEnqueue(StageTranscribe)
	if err != nil {
		t.Fatalf("ScanAndEnqueue failed: %v", err)
	}
	if found != 1 || queued != 1 {
		t.Errorf("Expected found=1 queued=1, got found=%d queued=%d", found, queued)
	}

	found, queued, err = c.ScanAndEnqueue(StageExtractText)
	if err != nil {
		t.Fatalf("ScanAndEnqueue failed: %v", err)
	}
	if found != 0 || queued != 0 {
		t.Errorf("Expected empty scan, got found=%d queued=%d", found, queued)
	}

	if _, _, err := c.ScanAndEnqueue("upload"); err == nil {
		t.Error("Expected error for unknown stage")
	}
}

func TestScanStopsWhenQueueFull(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	itemRepo.pendingDownload = []string{"a", "b", "c", "d"}
	scheduler := newFakeScheduler()
	scheduler.failAt = 2

	c := NewCoordinator(itemRepo, scheduler)

	found, queued, err := c.ScanAndEnqueue(StageDownload)
	if err != nil {
		t.Fatalf("ScanAndEnqueue failed: %v", err)
	}
	if found != 4 {
		t.Errorf("Expected found=4, got %d", found)
	}
	if queued != 2 {
		t.Errorf("Expected scan to stop after the queue filled, queued=%d", queued)
	}
}

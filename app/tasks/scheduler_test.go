package tasks

import (
	"testing"
	"time"

	"github.com/tokvault/tokvault/app/acquire"
)

func TestSchedulerRunsJobToCompletion(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	itemRepo.InsertItem("42", "https://www.tiktok.com/@u/video/42", nil)

	fetcher := &fakeFetcher{
		media:   &acquire.ResolvedMedia{ID: "42", Kind: acquire.ContentVideo},
		payload: &acquire.Payload{Data: []byte("video-bytes")},
	}
	resources := testResources(fetcher, nil, nil, nil, nil)

	s := NewScheduler(resources, itemRepo, newFakeBlobRepo(), newFakeTagRepo())
	s.Start()
	defer s.Stop()

	job, err := s.Enqueue(StageDownload, "42")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	result, err := job.Wait(10 * time.Second)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if result.Status != StatusSucceeded {
		t.Fatalf("Expected success, got %s: %s", result.Status, result.Message)
	}

	item, _ := itemRepo.GetItem("42")
	if !item.Downloaded {
		t.Error("Expected item downloaded after job completion")
	}
}

func TestSchedulerRejectsUnknownStage(t *testing.T) {
	setupTestCfg(t)

	s := NewScheduler(testResources(nil, nil, nil, nil, nil),
		newFakeItemRepo(), newFakeBlobRepo(), newFakeTagRepo())

	if _, err := s.Enqueue("upload", "42"); err == nil {
		t.Error("Expected error for unknown stage")
	}
}

func TestSchedulerStopIsIdleSafe(t *testing.T) {
	setupTestCfg(t)

	s := NewScheduler(testResources(nil, nil, nil, nil, nil),
		newFakeItemRepo(), newFakeBlobRepo(), newFakeTagRepo())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return on an idle scheduler")
	}
}

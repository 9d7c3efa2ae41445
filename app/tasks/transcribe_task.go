package tasks

import (
	"context"

	"github.com/tokvault/tokvault/app/database"
)

// TranscribeTask produces a speech transcript for a downloaded video.
type TranscribeTask struct {
	Task
	resources *Resources
	itemRepo  database.ItemRepository
	blobRepo  database.BlobRepository
}

func NewTranscribeTask(itemID string, resources *Resources, itemRepo database.ItemRepository,
	blobRepo database.BlobRepository) *TranscribeTask {
	return &TranscribeTask{
		Task:      NewTask(StageTranscribe, itemID),
		resources: resources,
		itemRepo:  itemRepo,
		blobRepo:  blobRepo,
	}
}

func (t *TranscribeTask) Execute(ctx context.Context) Result {
	item, err := t.itemRepo.GetItem(t.ItemID)
	if err != nil {
		return Failed(FailGeneric, "failed to load item: %v", err)
	}
	if item == nil {
		return Failed(FailNotFound, "item %s not found", t.ItemID)
	}

	if item.Transcribed {
		return Skipped("already transcribed")
	}
	if item.ContentKind != database.KindVideo {
		return Skipped("content kind is %s, not video", item.ContentKind)
	}
	if !item.Downloaded {
		return Skipped("not downloaded yet")
	}

	blob, err := t.blobRepo.GetBlob(item.ID)
	if err != nil {
		return Failed(FailGeneric, "failed to load blob: %v", err)
	}
	if blob == nil {
		return Failed(FailBlobMissing, "item %s is flagged downloaded but has no stored payload", item.ID)
	}

	transcriber, err := t.resources.GetTranscriber(ctx)
	if err != nil {
		return Failed(FailGeneric, "%v", err)
	}

	transcript, err := transcriber.Transcribe(ctx, blob.Data)
	if err != nil {
		return Failed(FailGeneric, "transcription failed: %v", err)
	}

	if err := t.itemRepo.SetTranscript(item.ID, transcript); err != nil {
		return Failed(FailGeneric, "failed to store transcript: %v", err)
	}

	return Result{Status: StatusSucceeded, Count: len(transcript)}
}

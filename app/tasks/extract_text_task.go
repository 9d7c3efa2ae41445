package tasks

import (
	"context"

	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
)

// ExtractTextTask runs text detection over every image of a downloaded
// collection and stores the concatenated result.
type ExtractTextTask struct {
	Task
	resources *Resources
	itemRepo  database.ItemRepository
	blobRepo  database.BlobRepository
}

func NewExtractTextTask(itemID string, resources *Resources, itemRepo database.ItemRepository,
	blobRepo database.BlobRepository) *ExtractTextTask {
	return &ExtractTextTask{
		Task:      NewTask(StageExtractText, itemID),
		resources: resources,
		itemRepo:  itemRepo,
		blobRepo:  blobRepo,
	}
}

func (t *ExtractTextTask) Execute(ctx context.Context) Result {
	item, err := t.itemRepo.GetItem(t.ItemID)
	if err != nil {
		return Failed(FailGeneric, "failed to load item: %v", err)
	}
	if item == nil {
		return Failed(FailNotFound, "item %s not found", t.ItemID)
	}

	if item.TextExtracted {
		return Skipped("text already extracted")
	}
	if item.ContentKind != database.KindImages {
		return Skipped("content kind is %s, not images", item.ContentKind)
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

	extractor, err := t.resources.GetTextExtractor(ctx)
	if err != nil {
		return Failed(FailGeneric, "%v", err)
	}

	text, err := extractor.ExtractText(ctx, blob.Data, cfg.Get().TextThreshold)
	if err != nil {
		return Failed(FailGeneric, "text extraction failed: %v", err)
	}

	if err := t.itemRepo.SetExtractedText(item.ID, text); err != nil {
		return Failed(FailGeneric, "failed to store extracted text: %v", err)
	}

	return Result{Status: StatusSucceeded, Count: len(text)}
}

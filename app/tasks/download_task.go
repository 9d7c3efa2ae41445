package tasks

import (
	"context"

	"github.com/tokvault/tokvault/app/acquire"
	"github.com/tokvault/tokvault/app/database"
)

// DownloadTask acquires one item: resolves its source URL, walks the
// download chain, and stores the payload with its metadata.
type DownloadTask struct {
	Task
	resources *Resources
	itemRepo  database.ItemRepository
}

func NewDownloadTask(itemID string, resources *Resources, itemRepo database.ItemRepository) *DownloadTask {
	return &DownloadTask{
		Task:      NewTask(StageDownload, itemID),
		resources: resources,
		itemRepo:  itemRepo,
	}
}

func (t *DownloadTask) Execute(ctx context.Context) Result {
	item, err := t.itemRepo.GetItem(t.ItemID)
	if err != nil {
		return Failed(FailGeneric, "failed to load item: %v", err)
	}
	if item == nil {
		return Failed(FailNotFound, "item %s not found", t.ItemID)
	}

	if item.Downloaded {
		return Skipped("already downloaded")
	}
	if item.IsDeleted {
		return Skipped("item is deleted at the source")
	}
	if item.IsPrivate {
		return Skipped("item is private at the source")
	}

	fetcher, err := t.resources.GetFetcher(ctx)
	if err != nil {
		return Failed(FailGeneric, "%v", err)
	}

	media, payload, err := fetcher.Fetch(ctx, item.ID, item.SourceURL)
	if err != nil {
		return t.recordFailure(err)
	}

	meta := database.ItemMetadata{
		Title:          media.Meta.Title,
		Author:         media.Meta.Author,
		AuthorID:       media.Meta.AuthorID,
		Description:    media.Meta.Description,
		CreatedTime:    media.Meta.CreatedTime,
		Duration:       media.Meta.Duration,
		CollectionSize: int64(payload.ImageCount),
	}

	if err := t.itemRepo.MarkDownloaded(item.ID, media.Kind, meta, payload.Data, payload.Thumbnail); err != nil {
		return Failed(FailGeneric, "failed to store payload: %v", err)
	}

	return Result{
		Status: StatusSucceeded,
		Bytes:  int64(len(payload.Data)),
		Count:  payload.ImageCount,
	}
}

// recordFailure maps an acquisition error onto the item's flags. Permanent
// conditions are persisted so the item stops being rescheduled; transient
// session problems are only reported, the next sweep retries them.
func (t *DownloadTask) recordFailure(err error) Result {
	kind := acquire.KindOf(err)

	switch kind {
	case acquire.ErrorDeleted:
		if markErr := t.itemRepo.MarkDeleted(t.ItemID); markErr != nil {
			return Failed(FailGeneric, "failed to mark item deleted: %v", markErr)
		}
	case acquire.ErrorPrivate:
		if markErr := t.itemRepo.MarkPrivate(t.ItemID); markErr != nil {
			return Failed(FailGeneric, "failed to mark item private: %v", markErr)
		}
	case acquire.ErrorExhausted, acquire.ErrorPartialCollection, acquire.ErrorGeneric:
		if markErr := t.itemRepo.MarkError(t.ItemID); markErr != nil {
			return Failed(FailGeneric, "failed to mark item errored: %v", markErr)
		}
	}

	return Failed(failKindOf(err), "%v", err)
}

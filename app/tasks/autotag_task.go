package tasks

import (
	"context"
	"strings"

	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/ml"
)

// AutoTagTask classifies an item's accumulated text against the configured
// label list and stores the labels that clear the confidence threshold.
type AutoTagTask struct {
	Task
	resources *Resources
	itemRepo  database.ItemRepository
	tagRepo   database.TagRepository
}

func NewAutoTagTask(itemID string, resources *Resources, itemRepo database.ItemRepository,
	tagRepo database.TagRepository) *AutoTagTask {
	return &AutoTagTask{
		Task:      NewTask(StageAutoTag, itemID),
		resources: resources,
		itemRepo:  itemRepo,
		tagRepo:   tagRepo,
	}
}

func (t *AutoTagTask) Execute(ctx context.Context) Result {
	item, err := t.itemRepo.GetItem(t.ItemID)
	if err != nil {
		return Failed(FailGeneric, "failed to load item: %v", err)
	}
	if item == nil {
		return Failed(FailNotFound, "item %s not found", t.ItemID)
	}

	if item.AutoTagged {
		return Skipped("already auto tagged")
	}
	if item.ContentKind == database.KindUnknown {
		return Skipped("content kind is still unknown")
	}
	if !item.Downloaded {
		return Skipped("not downloaded yet")
	}

	labels, err := t.resources.GetLabels()
	if err != nil {
		return Failed(FailGeneric, "failed to load labels: %v", err)
	}
	if len(labels) == 0 {
		return Skipped("no labels configured, auto tagging disabled")
	}

	text := classifiableText(item)
	if text == "" {
		return Skipped("no text available to classify")
	}

	scorer, err := t.resources.GetLabelScorer(ctx)
	if err != nil {
		return Failed(FailGeneric, "%v", err)
	}

	scores, err := scorer.ScoreLabels(ctx, text, labels)
	if err != nil {
		return Failed(FailGeneric, "label scoring failed: %v", err)
	}

	kept := ml.FilterScores(scores, labels, cfg.Get().TagThreshold)
	for _, score := range kept {
		if err := t.tagRepo.AddAutoTag(item.ID, score.Label, score.Confidence); err != nil {
			return Failed(FailGeneric, "failed to store tag %q: %v", score.Label, err)
		}
	}

	if err := t.itemRepo.MarkAutoTagged(item.ID); err != nil {
		return Failed(FailGeneric, "failed to mark item auto tagged: %v", err)
	}

	return Result{Status: StatusSucceeded, Count: len(kept)}
}

// classifiableText joins every text field known for the item. Tagging works
// on whatever is available at the time; it does not wait for transcription
// or text extraction.
func classifiableText(item *database.Item) string {
	parts := []string{item.Title, item.Description, item.Transcript, item.ExtractedText}

	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, "\n")
}

package tasks

import (
	"context"
	"testing"

	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/ml"
)

func TestAutoTagTaskSuccess(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	seedDownloadedItem(itemRepo, "42", database.KindVideo)
	itemRepo.items["42"].Description = "how to make pasta at home"
	tagRepo := newFakeTagRepo()

	scorer := &fakeLabelScorer{scores: []ml.LabelScore{
		{Label: "recipes", Confidence: 0.95},
		{Label: "anime", Confidence: 0.1},
	}}
	resources := testResources(nil, nil, nil, scorer, []string{"recipes", "anime"})

	result := NewAutoTagTask("42", resources, itemRepo, tagRepo).Execute(context.Background())

	if result.Status != StatusSucceeded {
		t.Fatalf("Expected success, got %s: %s", result.Status, result.Message)
	}
	if result.Count != 1 {
		t.Errorf("Expected 1 tag kept, got %d", result.Count)
	}

	tags := tagRepo.autoTags["42"]
	if len(tags) != 1 || tags[0].Label != "recipes" {
		t.Errorf("Expected only 'recipes' stored, got %v", tags)
	}

	item, _ := itemRepo.GetItem("42")
	if !item.AutoTagged {
		t.Error("Expected auto_tagged flag set")
	}
}

// No tags above the threshold is still a completed stage: the flag is set so
// the item is not rescored forever.
func TestAutoTagTaskNoTagsAboveThreshold(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	seedDownloadedItem(itemRepo, "42", database.KindVideo)
	itemRepo.items["42"].Description = "something uncategorizable"
	tagRepo := newFakeTagRepo()

	scorer := &fakeLabelScorer{scores: []ml.LabelScore{{Label: "recipes", Confidence: 0.2}}}
	resources := testResources(nil, nil, nil, scorer, []string{"recipes"})

	result := NewAutoTagTask("42", resources, itemRepo, tagRepo).Execute(context.Background())

	if result.Status != StatusSucceeded {
		t.Fatalf("Expected success, got %s", result.Status)
	}
	if len(tagRepo.autoTags["42"]) != 0 {
		t.Errorf("Expected no tags stored, got %v", tagRepo.autoTags["42"])
	}
	item, _ := itemRepo.GetItem("42")
	if !item.AutoTagged {
		t.Error("Expected auto_tagged flag set even with zero tags")
	}
}

func TestAutoTagTaskSkipsWithoutText(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	seedDownloadedItem(itemRepo, "42", database.KindVideo)

	resources := testResources(nil, nil, nil, &fakeLabelScorer{}, []string{"recipes"})
	result := NewAutoTagTask("42", resources, itemRepo, newFakeTagRepo()).Execute(context.Background())

	if result.Status != StatusSkipped {
		t.Fatalf("Expected skip when there is nothing to classify, got %s", result.Status)
	}
	item, _ := itemRepo.GetItem("42")
	if item.AutoTagged {
		t.Error("Expected flag to stay unset so a later transcript can be scored")
	}
}

func TestAutoTagTaskSkipsWithoutLabels(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	seedDownloadedItem(itemRepo, "42", database.KindVideo)
	itemRepo.items["42"].Description = "some text"

	resources := testResources(nil, nil, nil, &fakeLabelScorer{}, nil)
	result := NewAutoTagTask("42", resources, itemRepo, newFakeTagRepo()).Execute(context.Background())

	if result.Status != StatusSkipped {
		t.Fatalf("Expected skip when no labels are configured, got %s", result.Status)
	}
}

func TestAutoTagTaskSkipsUnknownKind(t *testing.T) {
	setupTestCfg(t)

	itemRepo := newFakeItemRepo()
	itemRepo.InsertItem("42", "u", nil)
	itemRepo.items["42"].Description = "text"

	resources := testResources(nil, nil, nil, &fakeLabelScorer{}, []string{"recipes"})
	result := NewAutoTagTask("42", resources, itemRepo, newFakeTagRepo()).Execute(context.Background())

	if result.Status != StatusSkipped {
		t.Fatalf("Expected skip for unresolved item, got %s", result.Status)
	}
}

func TestClassifiableTextJoinsAvailableFields(t *testing.T) {
	item := &database.Item{
		Title:         "original sound",
		Description:   "a description",
		Transcript:    "spoken words",
		ExtractedText: "",
	}

	text := classifiableText(item)
	expected := "original sound\na description\nspoken words"
	if text != expected {
		t.Errorf("Expected %q, got %q", expected, text)
	}

	if classifiableText(&database.Item{}) != "" {
		t.Error("Expected empty string for an item with no text")
	}
}

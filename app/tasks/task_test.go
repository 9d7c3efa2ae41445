package tasks

import (
	"testing"
	"time"
)

func TestParseStage(t *testing.T) {
	for _, stage := range Stages {
		parsed, err := ParseStage(string(stage))
		if err != nil {
			t.Errorf("ParseStage(%q) failed: %v", stage, err)
		}
		if parsed != stage {
			t.Errorf("ParseStage(%q) = %q", stage, parsed)
		}
	}

	if _, err := ParseStage("upload"); err == nil {
		t.Error("Expected error for unknown stage")
	}
}

func TestResultConstructors(t *testing.T) {
	if r := Succeeded(); r.Status != StatusSucceeded {
		t.Errorf("Unexpected status %s", r.Status)
	}

	r := Skipped("already %s", "done")
	if r.Status != StatusSkipped || r.Message != "already done" {
		t.Errorf("Unexpected skip result %+v", r)
	}

	r = Failed(FailTimeout, "after %ds", 30)
	if r.Status != StatusFailed || r.Kind != FailTimeout || r.Message != "after 30s" {
		t.Errorf("Unexpected fail result %+v", r)
	}
}

func TestTaskBookkeeping(t *testing.T) {
	task := NewTask(StageDownload, "42")

	if task.GetID() == "" {
		t.Error("Expected a generated task id")
	}
	if task.GetStage() != StageDownload {
		t.Errorf("Unexpected stage %s", task.GetStage())
	}
	if task.GetItemID() != "42" {
		t.Errorf("Unexpected item id %s", task.GetItemID())
	}

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}
	task.Start()
	time.Sleep(time.Millisecond)
	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after Start")
	}

	other := NewTask(StageDownload, "42")
	if other.GetID() == task.GetID() {
		t.Error("Expected unique task ids")
	}
}

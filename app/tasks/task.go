package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tokvault/tokvault/app/acquire"
)

// Stage identifies one logical queue of the pipeline.
type Stage string

const (
	StageDownload    Stage = "download"
	StageTranscribe  Stage = "transcribe"
	StageExtractText Stage = "extract_text"
	StageAutoTag     Stage = "auto_tag"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageDownload, StageTranscribe, StageExtractText, StageAutoTag}

func ParseStage(s string) (Stage, error) {
	for _, stage := range Stages {
		if s == string(stage) {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Status is the terminal state of a job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FailKind tags a failed result with why it failed. Acquisition kinds map
// 1:1; BlobMissing and NotFound originate in the store layer.
type FailKind string

const (
	FailNotFound          FailKind = "not_found"
	FailTimeout           FailKind = "timeout"
	FailRateLimited       FailKind = "rate_limited"
	FailAuthExpired       FailKind = "auth_expired"
	FailExhausted         FailKind = "all_methods_exhausted"
	FailPartialCollection FailKind = "partial_collection"
	FailBlobMissing       FailKind = "blob_missing"
	FailDeleted           FailKind = "deleted"
	FailPrivate           FailKind = "private"
	FailGeneric           FailKind = "error"
)

func failKindOf(err error) FailKind {
	return FailKind(acquire.KindOf(err))
}

// Result is what every job handler returns. Failures are carried here as
// data; a handler never raises past the queue boundary.
type Result struct {
	Status  Status   `json:"status"`
	Kind    FailKind `json:"kind,omitempty"`
	Message string   `json:"message,omitempty"`
	Bytes   int64    `json:"bytes,omitempty"`
	Count   int      `json:"count,omitempty"`
}

func Succeeded() Result {
	return Result{Status: StatusSucceeded}
}

func Skipped(format string, args ...any) Result {
	return Result{Status: StatusSkipped, Message: fmt.Sprintf(format, args...)}
}

func Failed(kind FailKind, format string, args ...any) Result {
	return Result{Status: StatusFailed, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// TaskInterface is one executable job. Execute must be idempotent: when the
// stage flag is already set it short-circuits to a skipped result without
// redoing the expensive work.
type TaskInterface interface {
	Execute(ctx context.Context) Result
	GetID() string
	GetStage() Stage
	GetItemID() string
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by all concrete tasks.
type Task struct {
	ID        string
	Stage     Stage
	ItemID    string
	StartedAt *time.Time
}

func NewTask(stage Stage, itemID string) Task {
	return Task{
		ID:     uuid.NewString(),
		Stage:  stage,
		ItemID: itemID,
	}
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetStage() Stage {
	return t.Stage
}

func (t *Task) GetItemID() string {
	return t.ItemID
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

package tasks

import (
	"context"

	"github.com/tokvault/tokvault/app/acquire"
	"github.com/tokvault/tokvault/app/ml"
)

// SchedulerInterface is the job submission surface. Enqueue is
// fire-and-forget; callers that care about the outcome wait on the
// returned job.
type SchedulerInterface interface {
	Start()
	Stop()
	Enqueue(stage Stage, itemID string) (*Job, error)
}

// Fetcher acquires one item: resolve plus download chain.
type Fetcher interface {
	Fetch(ctx context.Context, id, sourceURL string) (*acquire.ResolvedMedia, *acquire.Payload, error)
}

// Transcriber runs speech-to-text over a video payload.
type Transcriber interface {
	Transcribe(ctx context.Context, video []byte) (string, error)
}

// TextExtractor detects text across a zipped image collection.
type TextExtractor interface {
	ExtractText(ctx context.Context, archive []byte, threshold float64) (string, error)
}

// LabelScorer scores text against candidate labels.
type LabelScorer interface {
	ScoreLabels(ctx context.Context, text string, labels []string) ([]ml.LabelScore, error)
}

package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/tokvault/tokvault/app/acquire"
	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/ml"
)

// Resources holds the expensive shared clients used by tasks: the platform
// session and the model client. Both are created lazily on first use so the
// application starts even when the platform or the model API is unreachable,
// and are shared by all workers afterwards.
type Resources struct {
	fetcherOnce sync.Once
	fetcher     Fetcher
	fetcherErr  error

	modelOnce     sync.Once
	transcriber   Transcriber
	textExtractor TextExtractor
	labelScorer   LabelScorer
	modelErr      error

	labelsOnce sync.Once
	labels     []string
	labelsErr  error
}

func NewResources() *Resources {
	return &Resources{}
}

// GetFetcher returns the shared acquisition client, establishing the
// platform session on first call.
func (r *Resources) GetFetcher(ctx context.Context) (Fetcher, error) {
	r.fetcherOnce.Do(func() {
		c := cfg.Get()

		session, err := acquire.NewSession(ctx, c.SessionToken, c.UserAgent)
		if err != nil {
			r.fetcherErr = fmt.Errorf("failed to establish platform session: %w", err)
			return
		}

		downloader := acquire.NewDownloader(session.Client(), c.UserAgent, c.DownloadMinBytes)
		r.fetcher = acquire.NewAcquirer(session, downloader)
	})

	return r.fetcher, r.fetcherErr
}

func (r *Resources) initModel(ctx context.Context) error {
	r.modelOnce.Do(func() {
		c := cfg.Get()

		if c.GeminiAPIKey == "" {
			r.modelErr = fmt.Errorf("model API key is not configured")
			return
		}

		client, err := ml.NewClient(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			r.modelErr = fmt.Errorf("failed to create model client: %w", err)
			return
		}
		r.transcriber = client
		r.textExtractor = client
		r.labelScorer = client
	})

	return r.modelErr
}

func (r *Resources) GetTranscriber(ctx context.Context) (Transcriber, error) {
	if err := r.initModel(ctx); err != nil {
		return nil, err
	}
	return r.transcriber, nil
}

func (r *Resources) GetTextExtractor(ctx context.Context) (TextExtractor, error) {
	if err := r.initModel(ctx); err != nil {
		return nil, err
	}
	return r.textExtractor, nil
}

func (r *Resources) GetLabelScorer(ctx context.Context) (LabelScorer, error) {
	if err := r.initModel(ctx); err != nil {
		return nil, err
	}
	return r.labelScorer, nil
}

// GetLabels loads the candidate labels for auto tagging. An empty list
// means auto tagging is disabled.
func (r *Resources) GetLabels() ([]string, error) {
	r.labelsOnce.Do(func() {
		r.labels, r.labelsErr = ml.LoadLabels(cfg.Get().LabelsFile)
	})

	return r.labels, r.labelsErr
}

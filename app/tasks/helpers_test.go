package tasks

import (
	"context"
	"testing"

	"github.com/tokvault/tokvault/app/acquire"
	"github.com/tokvault/tokvault/app/cfg"
	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/ml"
)

func setupTestCfg(t *testing.T) {
	t.Helper()
	cfg.Set(&cfg.Cfg{
		Port:               "8080",
		SchedulerInterval:  300,
		DownloadWorkers:    1,
		TranscribeWorkers:  1,
		ExtractTextWorkers: 1,
		AutoTagWorkers:     1,
		DownloadRatePerMin: 6000,
		DownloadMinBytes:   1,
		LabelsFile:         "./does-not-exist.yml",
		TagThreshold:       0.8,
		TextThreshold:      0.5,
	})
}

type fakeItemRepo struct {
	items map[string]*database.Item

	markedDeleted []string
	markedPrivate []string
	markedError   []string
	downloaded    []string
	transcripts   map[string]string
	extracted     map[string]string
	autoTagged    []string

	pendingDownload    []string
	pendingTranscribe  []string
	pendingExtractText []string
	pendingAutoTag     []string
}

var _ database.ItemRepository = (*fakeItemRepo)(nil)

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:       make(map[string]*database.Item),
		transcripts: make(map[string]string),
		extracted:   make(map[string]string),
	}
}

func (f *fakeItemRepo) InsertItem(id, sourceURL string, favoritedAt *int64) (bool, error) {
	if _, ok := f.items[id]; ok {
		return false, nil
	}
	f.items[id] = &database.Item{ID: id, SourceURL: sourceURL, ContentKind: database.KindUnknown, FavoritedAt: favoritedAt}
	return true, nil
}

func (f *fakeItemRepo) GetItem(id string) (*database.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemRepo) ListItems(limit, offset int) ([]database.Item, error) { return nil, nil }

func (f *fakeItemRepo) GetItemCount() (int, error) { return len(f.items), nil }

func (f *fakeItemRepo) GetStats() (*database.Stats, error) { return &database.Stats{}, nil }

func (f *fakeItemRepo) MarkDownloaded(id, contentKind string, meta database.ItemMetadata, data, thumbnail []byte) error {
	item := f.items[id]
	item.ContentKind = contentKind
	item.Downloaded = true
	item.HasError = false
	item.Title = meta.Title
	item.Author = meta.Author
	f.downloaded = append(f.downloaded, id)
	return nil
}

func (f *fakeItemRepo) SetTranscript(id, transcript string) error {
	f.items[id].Transcribed = true
	f.items[id].Transcript = transcript
	f.transcripts[id] = transcript
	return nil
}

func (f *fakeItemRepo) SetExtractedText(id, text string) error {
	f.items[id].TextExtracted = true
	f.items[id].ExtractedText = text
	f.extracted[id] = text
	return nil
}

func (f *fakeItemRepo) MarkAutoTagged(id string) error {
	f.items[id].AutoTagged = true
	f.autoTagged = append(f.autoTagged, id)
	return nil
}

func (f *fakeItemRepo) MarkDeleted(id string) error {
	f.items[id].IsDeleted = true
	f.items[id].HasError = true
	f.markedDeleted = append(f.markedDeleted, id)
	return nil
}

func (f *fakeItemRepo) MarkPrivate(id string) error {
	f.items[id].IsPrivate = true
	f.items[id].HasError = true
	f.markedPrivate = append(f.markedPrivate, id)
	return nil
}

func (f *fakeItemRepo) MarkError(id string) error {
	f.items[id].HasError = true
	f.markedError = append(f.markedError, id)
	return nil
}

func (f *fakeItemRepo) ClearErrorFlags() (int64, error) { return 0, nil }

func (f *fakeItemRepo) ListPendingDownload() ([]string, error) { return f.pendingDownload, nil }

func (f *fakeItemRepo) ListPendingTranscription() ([]string, error) { return f.pendingTranscribe, nil }

func (f *fakeItemRepo) ListPendingTextExtraction() ([]string, error) {
	return f.pendingExtractText, nil
}

func (f *fakeItemRepo) ListPendingAutoTag() ([]string, error) { return f.pendingAutoTag, nil }

type fakeBlobRepo struct {
	blobs map[string]*database.Blob
}

var _ database.BlobRepository = (*fakeBlobRepo)(nil)

func newFakeBlobRepo() *fakeBlobRepo {
	return &fakeBlobRepo{blobs: make(map[string]*database.Blob)}
}

func (f *fakeBlobRepo) GetBlob(id string) (*database.Blob, error) {
	return f.blobs[id], nil
}

func (f *fakeBlobRepo) BlobExists(id string) (bool, error) {
	_, ok := f.blobs[id]
	return ok, nil
}

func (f *fakeBlobRepo) GetBlobSize(id string) (int64, error) {
	if blob, ok := f.blobs[id]; ok {
		return int64(len(blob.Data)), nil
	}
	return 0, nil
}

type fakeTagRepo struct {
	autoTags map[string][]ml.LabelScore
}

var _ database.TagRepository = (*fakeTagRepo)(nil)

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{autoTags: make(map[string][]ml.LabelScore)}
}

func (f *fakeTagRepo) AddManualTag(itemID, tag string) error { return nil }
func (f *fakeTagRepo) RemoveManualTag(itemID, tag string) (int64, error) {
	return 0, nil
}
func (f *fakeTagRepo) AddAutoTag(itemID, tag string, confidence float64) error {
	f.autoTags[itemID] = append(f.autoTags[itemID], ml.LabelScore{Label: tag, Confidence: confidence})
	return nil
}
func (f *fakeTagRepo) GetItemTags(itemID string) ([]database.Tag, error) { return nil, nil }

func (f *fakeTagRepo) GetAllTags(source string) ([]database.TagCount, error) { return nil, nil }

type fakeFetcher struct {
	media   *acquire.ResolvedMedia
	payload *acquire.Payload
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, id, sourceURL string) (*acquire.ResolvedMedia, *acquire.Payload, error) {
	f.calls++
	return f.media, f.payload, f.err
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, video []byte) (string, error) {
	return f.transcript, f.err
}

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) ExtractText(ctx context.Context, archive []byte, threshold float64) (string, error) {
	return f.text, f.err
}

type fakeLabelScorer struct {
	scores []ml.LabelScore
	err    error
}

func (f *fakeLabelScorer) ScoreLabels(ctx context.Context, text string, labels []string) ([]ml.LabelScore, error) {
	return f.scores, f.err
}

// testResources builds a Resources with every lazy slot pre-seeded so no
// network or model client is ever touched.
func testResources(fetcher Fetcher, transcriber Transcriber, extractor TextExtractor,
	scorer LabelScorer, labels []string) *Resources {
	r := NewResources()
	r.fetcherOnce.Do(func() {})
	r.fetcher = fetcher
	r.modelOnce.Do(func() {})
	r.transcriber = transcriber
	r.textExtractor = extractor
	r.labelScorer = scorer
	r.labelsOnce.Do(func() {})
	r.labels = labels
	return r
}

package database

// ItemRepository is the store of per-item metadata and stage flags.
type ItemRepository interface {
	InsertItem(id, sourceURL string, favoritedAt *int64) (bool, error)
	GetItem(id string) (*Item, error)
	ListItems(limit, offset int) ([]Item, error)
	GetItemCount() (int, error)
	GetStats() (*Stats, error)

	MarkDownloaded(id, contentKind string, meta ItemMetadata, data, thumbnail []byte) error
	SetTranscript(id, transcript string) error
	SetExtractedText(id, text string) error
	MarkAutoTagged(id string) error
	MarkDeleted(id string) error
	MarkPrivate(id string) error
	MarkError(id string) error
	ClearErrorFlags() (int64, error)

	ListPendingDownload() ([]string, error)
	ListPendingTranscription() ([]string, error)
	ListPendingTextExtraction() ([]string, error)
	ListPendingAutoTag() ([]string, error)
}

// BlobRepository reads stored binary payloads. Writes go through
// ItemRepository.MarkDownloaded so the flag and the blob move together.
type BlobRepository interface {
	GetBlob(id string) (*Blob, error)
	BlobExists(id string) (bool, error)
	GetBlobSize(id string) (int64, error)
}

// TagRepository handles manual and automatic tags.
type TagRepository interface {
	AddManualTag(itemID, tag string) error
	RemoveManualTag(itemID, tag string) (int64, error)
	AddAutoTag(itemID, tag string, confidence float64) error
	GetItemTags(itemID string) ([]Tag, error)
	GetAllTags(source string) ([]TagCount, error)
}

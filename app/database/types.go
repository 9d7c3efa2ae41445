package database

// Content kinds stored on an item. An item starts out unknown and is
// assigned a concrete kind on first successful resolution.
const (
	KindUnknown = "unknown"
	KindVideo   = "video"
	KindImages  = "images"
)

// Item is one archived post and its processing-stage state.
type Item struct {
	ID             string
	SourceURL      string
	ContentKind    string
	Title          string
	Author         string
	AuthorID       string
	Description    string
	CreatedTime    *int64
	Duration       *int64
	CollectionSize *int64
	FavoritedAt    *int64
	Downloaded     bool
	Transcribed    bool
	TextExtracted  bool
	AutoTagged     bool
	HasError       bool
	IsDeleted      bool
	IsPrivate      bool
	Transcript     string
	ExtractedText  string
	IngestedAt     int64
}

// ItemMetadata is the metadata captured at resolution time, written to the
// item row together with the blob in one transaction.
type ItemMetadata struct {
	Title          string
	Author         string
	AuthorID       string
	Description    string
	CreatedTime    int64
	Duration       int64
	CollectionSize int64
}

// Blob is the raw binary payload stored for an item: the media file itself,
// or a zip archive for image collections.
type Blob struct {
	ID           string
	Data         []byte
	Thumbnail    []byte
	DownloadedAt int64
}

// Tag is one tag on an item, either user-added or produced by auto tagging.
type Tag struct {
	ID         int64
	ItemID     string
	Tag        string
	Confidence *float64
	Source     string
	AddedAt    int64
}

const (
	TagSourceManual = "manual"
	TagSourceAuto   = "auto"
)

// TagCount is an aggregated tag with its usage count.
type TagCount struct {
	Tag   string
	Count int
}

// Stats summarizes pipeline progress across all items.
type Stats struct {
	Total         int
	Downloaded    int
	Transcribed   int
	TextExtracted int
	AutoTagged    int
	Errors        int
	Deleted       int
	Private       int
}

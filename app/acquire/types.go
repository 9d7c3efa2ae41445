package acquire

// Content kinds reported by resolution.
const (
	ContentVideo  = "video"
	ContentImages = "images"
)

// Metadata is what the remote platform knows about an item.
type Metadata struct {
	Title       string
	Author      string
	AuthorID    string
	Description string
	CreatedTime int64
	Duration    int64
}

// ResolvedMedia is the outcome of resolving a source URL: the item's kind,
// its metadata, and the candidate download locations in preference order.
type ResolvedMedia struct {
	ID   string
	Kind string
	Meta Metadata

	// Video descriptors, tried in this order: every URL of every bitrate
	// variant, then the direct play address, then the HD address, then the
	// legacy bulk-fetch address.
	BitrateVariants [][]string
	DirectURL       string
	HDURL           string
	LegacyURL       string

	// Image sub-resources for collections.
	Images []string
}

// Payload is the downloaded binary object for an item.
type Payload struct {
	Data       []byte
	Thumbnail  []byte
	Method     string
	ImageCount int
}

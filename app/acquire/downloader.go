package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Download method names, reported on the payload for logging and tests.
const (
	MethodBitrate = "bitrate"
	MethodDirect  = "direct"
	MethodHD      = "hd"
	MethodLegacy  = "legacy"
	MethodImages  = "images"
)

// Downloader turns resolved media into raw bytes by walking the descriptor
// chain in preference order.
type Downloader struct {
	client    *http.Client
	userAgent string
	minBytes  int64
}

// NewDownloader creates a downloader on top of the given client, usually the
// session's so media requests carry its cookies. Payloads smaller than
// minBytes are rejected as error pages served with a success status.
func NewDownloader(client *http.Client, userAgent string, minBytes int64) *Downloader {
	return &Downloader{client: client, userAgent: userAgent, minBytes: minBytes}
}

type descriptorGroup struct {
	method string
	urls   []string
}

func descriptorGroups(media *ResolvedMedia) []descriptorGroup {
	var groups []descriptorGroup
	for _, variant := range media.BitrateVariants {
		groups = append(groups, descriptorGroup{method: MethodBitrate, urls: variant})
	}
	if media.DirectURL != "" {
		groups = append(groups, descriptorGroup{method: MethodDirect, urls: []string{media.DirectURL}})
	}
	if media.HDURL != "" {
		groups = append(groups, descriptorGroup{method: MethodHD, urls: []string{media.HDURL}})
	}
	if media.LegacyURL != "" {
		groups = append(groups, descriptorGroup{method: MethodLegacy, urls: []string{media.LegacyURL}})
	}
	return groups
}

// Run downloads the media payload. Videos walk the descriptor chain and stop
// at the first accepted payload; collections fetch every sub-image and fail
// as a whole if any single fetch fails, so no partial collection is stored.
func (d *Downloader) Run(ctx context.Context, media *ResolvedMedia) (*Payload, error) {
	if media.Kind == ContentImages {
		return d.downloadImages(ctx, media)
	}
	return d.downloadVideo(ctx, media)
}

func (d *Downloader) downloadVideo(ctx context.Context, media *ResolvedMedia) (*Payload, error) {
	for _, group := range descriptorGroups(media) {
		for _, candidate := range group.urls {
			select {
			case <-ctx.Done():
				return nil, WrapError(ErrorGeneric, ctx.Err(), "download cancelled")
			default:
			}

			data, err := d.fetch(ctx, candidate)
			if err != nil {
				slog.Debug("Download candidate failed",
					"item_id", media.ID, "method", group.method, "error", err)
				continue
			}

			return &Payload{Data: data, Method: group.method}, nil
		}
	}

	return nil, NewError(ErrorExhausted, "all download methods exhausted for item %s", media.ID)
}

func (d *Downloader) downloadImages(ctx context.Context, media *ResolvedMedia) (*Payload, error) {
	if len(media.Images) == 0 {
		return nil, NewError(ErrorGeneric, "collection %s has no image descriptors", media.ID)
	}

	images := make([][]byte, 0, len(media.Images))
	for i, imageURL := range media.Images {
		data, err := d.fetch(ctx, imageURL)
		if err != nil {
			return nil, WrapError(ErrorPartialCollection, err,
				"image %d/%d of collection %s failed", i+1, len(media.Images), media.ID)
		}
		images = append(images, data)
	}

	archive, err := zipImages(images)
	if err != nil {
		return nil, WrapError(ErrorGeneric, err, "failed to pack collection %s", media.ID)
	}

	return &Payload{
		Data:       archive,
		Thumbnail:  images[0],
		Method:     MethodImages,
		ImageCount: len(images),
	}, nil
}

func (d *Downloader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", defaultAPIBase+"/")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	// A success status with a tiny body is almost always an error page.
	if int64(len(data)) < d.minBytes {
		return nil, fmt.Errorf("payload too small: %d bytes", len(data))
	}

	return data, nil
}

// zipImages packs collection images into one archive, entries named by
// position so extraction order matches display order.
func zipImages(images [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for i, image := range images {
		entry, err := w.Create(fmt.Sprintf("%d.jpeg", i))
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %d: %w", i, err)
		}
		if _, err := entry.Write(image); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}

	return buf.Bytes(), nil
}

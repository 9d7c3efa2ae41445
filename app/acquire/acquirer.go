package acquire

import (
	"context"
	"log/slog"
)

// Acquirer combines resolution and the download chain into the full
// acquisition of one item.
type Acquirer struct {
	session    *Session
	downloader *Downloader
}

func NewAcquirer(session *Session, downloader *Downloader) *Acquirer {
	return &Acquirer{session: session, downloader: downloader}
}

// Fetch resolves a source URL and downloads its payload. When the whole
// descriptor chain is exhausted, it re-resolves once for fresh descriptors
// and retries the chain; that is the only automatic retry, everything else
// is left to the next coordinator run. Thumbnail extraction is best-effort
// and never fails the acquisition.
func (a *Acquirer) Fetch(ctx context.Context, id, sourceURL string) (*ResolvedMedia, *Payload, error) {
	media, err := a.session.Resolve(ctx, id, sourceURL)
	if err != nil {
		return nil, nil, err
	}

	payload, err := a.downloader.Run(ctx, media)
	if err != nil && KindOf(err) == ErrorExhausted {
		slog.Warn("Download chain exhausted, re-resolving for fresh descriptors", "item_id", id)

		fresh, resolveErr := a.session.Resolve(ctx, id, sourceURL)
		if resolveErr == nil {
			media = fresh
			payload, err = a.downloader.Run(ctx, media)
		}
	}
	if err != nil {
		return media, nil, err
	}

	if media.Kind == ContentVideo {
		thumb, thumbErr := videoThumbnail(ctx, payload.Data)
		if thumbErr != nil {
			slog.Debug("Thumbnail extraction failed", "item_id", id, "error", thumbErr)
		} else {
			payload.Thumbnail = thumb
		}
	}

	return media, payload, nil
}

package acquire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://www.tiktok.com"

	// resolveTimeout bounds a single resolution. The remote side sometimes
	// hangs forever, so this is enforced here on top of the client timeout.
	resolveTimeout = 30 * time.Second

	sessionHandshakeTimeout = 15 * time.Second
)

// Session is the remote platform session shared by all resolutions of one
// worker process. Establishing it costs a handshake and a token exchange, so
// it is created once per process and reused for the process lifetime. It
// must never be shared across processes or serialized.
type Session struct {
	client    *http.Client
	apiBase   string
	userAgent string
}

// NewSession performs the handshake against the platform and installs the
// session token. The returned session is safe for concurrent use.
func NewSession(ctx context.Context, token, userAgent string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &Session{
		client:    &http.Client{Jar: jar, Timeout: 60 * time.Second},
		apiBase:   defaultAPIBase,
		userAgent: userAgent,
	}

	handshakeCtx, cancel := context.WithTimeout(ctx, sessionHandshakeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(handshakeCtx, "GET", s.apiBase+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create handshake request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session handshake failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if token != "" {
		base, err := url.Parse(s.apiBase)
		if err != nil {
			return nil, fmt.Errorf("invalid API base: %w", err)
		}
		jar.SetCookies(base, []*http.Cookie{{Name: "msToken", Value: token}})
	}

	return s, nil
}

// Client exposes the session's HTTP client so downloads reuse its cookies.
func (s *Session) Client() *http.Client {
	return s.client
}

// NormalizeShareURL converts an export share link into the canonical form
// the platform API accepts.
func NormalizeShareURL(link string) string {
	link = strings.Replace(link, "tiktokv", "tiktok", 1)
	return strings.Replace(link, "/share/", "/@/", 1)
}

// itemDetail mirrors the relevant slice of the platform's item-detail
// response.
type itemDetail struct {
	StatusCode int    `json:"statusCode"`
	StatusMsg  string `json:"statusMsg"`
	ItemInfo   struct {
		ItemStruct struct {
			ID         string      `json:"id"`
			Desc       string      `json:"desc"`
			CreateTime json.Number `json:"createTime"`
			Author     struct {
				UniqueID string `json:"uniqueId"`
				Nickname string `json:"nickname"`
			} `json:"author"`
			Music struct {
				Title string `json:"title"`
			} `json:"music"`
			Video struct {
				Duration     int64  `json:"duration"`
				PlayAddr     string `json:"playAddr"`
				DownloadAddr string `json:"downloadAddr"`
				BitrateInfo  []struct {
					PlayAddr struct {
						URLList []string `json:"UrlList"`
					} `json:"PlayAddr"`
				} `json:"bitrateInfo"`
			} `json:"video"`
			ImagePost *struct {
				Images []struct {
					ImageURL struct {
						URLList []string `json:"urlList"`
					} `json:"imageURL"`
				} `json:"images"`
			} `json:"imagePost"`
		} `json:"itemStruct"`
	} `json:"itemInfo"`
}

// Resolve turns a source URL into metadata plus ranked download descriptors.
// It enforces its own 30s bound; a deadline hit surfaces as a Timeout error,
// never as a silent retry.
func (s *Session) Resolve(ctx context.Context, id, sourceURL string) (*ResolvedMedia, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/item/detail/?itemId=%s", s.apiBase, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(resolveCtx, "GET", endpoint, nil)
	if err != nil {
		return nil, WrapError(ErrorGeneric, err, "failed to create resolve request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", NormalizeShareURL(sourceURL))

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, WrapError(ErrorTimeout, err, "resolution timed out after %s", resolveTimeout)
		}
		return nil, WrapError(ErrorGeneric, err, "resolve request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewError(ErrorNotFound, "item %s not found", id)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(ErrorRateLimited, "rate limited resolving item %s", id)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, NewError(ErrorAuthExpired, "session rejected resolving item %s (HTTP %d)", id, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(ErrorGeneric, "resolve failed with HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, WrapError(ErrorTimeout, err, "resolution timed out after %s", resolveTimeout)
		}
		return nil, WrapError(ErrorGeneric, err, "failed to read resolve response")
	}

	var detail itemDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, WrapError(ErrorGeneric, err, "failed to parse resolve response")
	}

	if detail.StatusCode != 0 {
		return nil, NewError(ClassifyMessage(detail.StatusMsg),
			"remote refused item %s: %s", id, detail.StatusMsg)
	}

	return s.buildResolved(id, &detail), nil
}

func (s *Session) buildResolved(id string, detail *itemDetail) *ResolvedMedia {
	item := &detail.ItemInfo.ItemStruct

	author := item.Author.UniqueID
	if author == "" {
		author = item.Author.Nickname
	}
	createTime, _ := item.CreateTime.Int64()

	media := &ResolvedMedia{
		ID: id,
		Meta: Metadata{
			Title:       item.Music.Title,
			Author:      author,
			AuthorID:    item.Author.UniqueID,
			Description: item.Desc,
			CreatedTime: createTime,
			Duration:    item.Video.Duration,
		},
	}

	if item.ImagePost != nil {
		media.Kind = ContentImages
		for _, image := range item.ImagePost.Images {
			if len(image.ImageURL.URLList) > 0 {
				media.Images = append(media.Images, image.ImageURL.URLList[0])
			}
		}
		return media
	}

	media.Kind = ContentVideo
	for _, variant := range item.Video.BitrateInfo {
		if len(variant.PlayAddr.URLList) > 0 {
			media.BitrateVariants = append(media.BitrateVariants, variant.PlayAddr.URLList)
		}
	}
	media.DirectURL = item.Video.PlayAddr
	media.HDURL = item.Video.DownloadAddr
	media.LegacyURL = fmt.Sprintf("%s/aweme/v1/play/?video_id=%s&ratio=default&line=0", s.apiBase, url.QueryEscape(id))

	return media
}

package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tokvault/tokvault/app/database"
)

// exportDateLayout is the timestamp format used by the platform export.
const exportDateLayout = "2006-01-02 15:04:05"

// Ingester populates the item store from an export document.
type Ingester struct {
	itemRepo database.ItemRepository
}

func NewIngester(itemRepo database.ItemRepository) *Ingester {
	return &Ingester{itemRepo: itemRepo}
}

// RunFile ingests the export JSON at the given path.
func (i *Ingester) RunFile(path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return i.Run(data)
}

// Run ingests an export document. Items already present keep their row
// untouched, so re-running an ingestion is always safe.
func (i *Ingester) Run(data []byte) (*Stats, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export document: %w", err)
	}

	records := doc.Activity.FavoriteVideos.List
	stats := &Stats{Total: len(records)}

	for _, record := range records {
		if record.Link == "" {
			stats.Errors++
			continue
		}

		id, err := ExtractID(record.Link)
		if err != nil {
			slog.Warn("Skipping export record with unusable link", "link", record.Link, "error", err)
			stats.Errors++
			continue
		}

		inserted, err := i.itemRepo.InsertItem(id, record.Link, parseFavoritedAt(record.Date))
		if err != nil {
			slog.Error("Failed to insert item", "id", id, "error", err)
			stats.Errors++
			continue
		}

		if inserted {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}

	slog.Info("Ingestion completed",
		"total", stats.Total,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, nil
}

// ExtractID pulls the item id out of a share link. Links look like
// https://www.tiktokv.com/share/video/7568062427057720590/ with the id as
// the last path segment.
func ExtractID(link string) (string, error) {
	trimmed := strings.TrimRight(link, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", fmt.Errorf("no id segment in link %q", link)
	}
	return trimmed[idx+1:], nil
}

// parseFavoritedAt converts the export's date string to a unix timestamp.
// Unparsable dates are tolerated and stored as absent.
func parseFavoritedAt(date string) *int64 {
	if date == "" {
		return nil
	}
	t, err := time.Parse(exportDateLayout, date)
	if err != nil {
		return nil
	}
	ts := t.UTC().Unix()
	return &ts
}

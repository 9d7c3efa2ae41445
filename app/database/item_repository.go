package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo handles database operations for items
type ItemRepo struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = `id, source_url, content_kind, COALESCE(title, ''), COALESCE(author, ''),
	COALESCE(author_id, ''), COALESCE(description, ''), created_time, duration,
	collection_size, favorited_at, downloaded, transcribed, text_extracted, auto_tagged,
	has_error, is_deleted, is_private, COALESCE(transcript, ''), COALESCE(extracted_text, ''),
	ingested_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.SourceURL, &item.ContentKind, &item.Title, &item.Author,
		&item.AuthorID, &item.Description, &item.CreatedTime, &item.Duration,
		&item.CollectionSize, &item.FavoritedAt, &item.Downloaded, &item.Transcribed,
		&item.TextExtracted, &item.AutoTagged, &item.HasError, &item.IsDeleted,
		&item.IsPrivate, &item.Transcript, &item.ExtractedText, &item.IngestedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertItem registers a newly ingested item with all stage flags unset.
// A known id is left untouched; the bool reports whether a row was inserted.
func (r *ItemRepo) InsertItem(id, sourceURL string, favoritedAt *int64) (bool, error) {
	res, err := r.db.Exec(`
		INSERT OR IGNORE INTO items (id, source_url, favorited_at, ingested_at)
		VALUES (?, ?, ?, ?)
	`, id, sourceURL, favoritedAt, time.Now().UTC().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

func (r *ItemRepo) GetItem(id string) (*Item, error) {
	item, err := scanItem(r.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *ItemRepo) ListItems(limit, offset int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM items
		ORDER BY COALESCE(favorited_at, ingested_at) DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepo) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) GetStats() (*Stats, error) {
	var stats Stats
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(downloaded), 0), COALESCE(SUM(transcribed), 0),
		       COALESCE(SUM(text_extracted), 0), COALESCE(SUM(auto_tagged), 0),
		       COALESCE(SUM(has_error), 0), COALESCE(SUM(is_deleted), 0),
		       COALESCE(SUM(is_private), 0)
		FROM items
	`).Scan(&stats.Total, &stats.Downloaded, &stats.Transcribed, &stats.TextExtracted,
		&stats.AutoTagged, &stats.Errors, &stats.Deleted, &stats.Private)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// MarkDownloaded writes the resolved metadata, flips the downloaded flag and
// stores the blob in a single transaction, so a downloaded item always has a
// blob row. A successful download supersedes any earlier error flag.
func (r *ItemRepo) MarkDownloaded(id, contentKind string, meta ItemMetadata, data, thumbnail []byte) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE items
		SET title = ?, author = ?, author_id = ?, description = ?,
		    created_time = ?, duration = ?, collection_size = ?,
		    content_kind = ?, downloaded = 1, has_error = 0
		WHERE id = ?
	`, meta.Title, meta.Author, meta.AuthorID, meta.Description,
		meta.CreatedTime, meta.Duration, meta.CollectionSize, contentKind, id)
	if err != nil {
		return fmt.Errorf("failed to update item metadata: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s not found", id)
	}

	_, err = tx.Exec(`
		INSERT INTO blobs (id, data, thumbnail, downloaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			thumbnail = excluded.thumbnail,
			downloaded_at = excluded.downloaded_at
	`, id, data, thumbnail, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit download: %w", err)
	}

	return nil
}

func (r *ItemRepo) SetTranscript(id, transcript string) error {
	_, err := r.db.Exec(`
		UPDATE items SET transcript = ?, transcribed = 1 WHERE id = ?
	`, transcript, id)
	if err != nil {
		return fmt.Errorf("failed to set transcript: %w", err)
	}
	return nil
}

func (r *ItemRepo) SetExtractedText(id, text string) error {
	_, err := r.db.Exec(`
		UPDATE items SET extracted_text = ?, text_extracted = 1 WHERE id = ?
	`, text, id)
	if err != nil {
		return fmt.Errorf("failed to set extracted text: %w", err)
	}
	return nil
}

func (r *ItemRepo) MarkAutoTagged(id string) error {
	_, err := r.db.Exec(`UPDATE items SET auto_tagged = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark auto tagged: %w", err)
	}
	return nil
}

func (r *ItemRepo) MarkDeleted(id string) error {
	_, err := r.db.Exec(`UPDATE items SET is_deleted = 1, has_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark deleted: %w", err)
	}
	return nil
}

func (r *ItemRepo) MarkPrivate(id string) error {
	_, err := r.db.Exec(`UPDATE items SET is_private = 1, has_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark private: %w", err)
	}
	return nil
}

func (r *ItemRepo) MarkError(id string) error {
	_, err := r.db.Exec(`UPDATE items SET has_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark error: %w", err)
	}
	return nil
}

// ClearErrorFlags drops stale error flags on items that downloaded anyway.
func (r *ItemRepo) ClearErrorFlags() (int64, error) {
	res, err := r.db.Exec(`
		UPDATE items SET has_error = 0 WHERE downloaded = 1 AND has_error = 1
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear error flags: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read cleanup result: %w", err)
	}
	return affected, nil
}

func (r *ItemRepo) listIDs(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item ids: %w", err)
	}

	return ids, nil
}

// ListPendingDownload returns items still waiting on acquisition. Deleted and
// private items are terminal and excluded until their flags are cleared.
func (r *ItemRepo) ListPendingDownload() ([]string, error) {
	return r.listIDs(`
		SELECT id FROM items
		WHERE downloaded = 0 AND is_deleted = 0 AND is_private = 0 AND has_error = 0
		ORDER BY COALESCE(favorited_at, ingested_at) DESC
	`)
}

func (r *ItemRepo) ListPendingTranscription() ([]string, error) {
	return r.listIDs(`
		SELECT id FROM items
		WHERE downloaded = 1 AND transcribed = 0 AND content_kind = ? AND has_error = 0
		ORDER BY COALESCE(favorited_at, ingested_at) DESC
	`, KindVideo)
}

func (r *ItemRepo) ListPendingTextExtraction() ([]string, error) {
	return r.listIDs(`
		SELECT id FROM items
		WHERE downloaded = 1 AND text_extracted = 0 AND content_kind = ? AND has_error = 0
		ORDER BY COALESCE(favorited_at, ingested_at) DESC
	`, KindImages)
}

func (r *ItemRepo) ListPendingAutoTag() ([]string, error) {
	return r.listIDs(`
		SELECT id FROM items
		WHERE downloaded = 1 AND auto_tagged = 0 AND content_kind != ? AND has_error = 0
		ORDER BY COALESCE(favorited_at, ingested_at) DESC
	`, KindUnknown)
}

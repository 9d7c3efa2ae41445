package database

import (
	"errors"
	"fmt"
	"time"
)

var _ TagRepository = (*TagRepo)(nil)

// ErrTagExists is returned when a manual tag is already present on an item.
var ErrTagExists = errors.New("tag already exists")

// TagRepo handles database operations for tags
type TagRepo struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

func (r *TagRepo) AddManualTag(itemID, tag string) error {
	res, err := r.db.Exec(`
		INSERT OR IGNORE INTO tags (item_id, tag, source, added_at)
		VALUES (?, ?, ?, ?)
	`, itemID, tag, TagSourceManual, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to add tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read tag insert result: %w", err)
	}
	if affected == 0 {
		return ErrTagExists
	}

	return nil
}

func (r *TagRepo) RemoveManualTag(itemID, tag string) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM tags WHERE item_id = ? AND tag = ? AND source = ?
	`, itemID, tag, TagSourceManual)
	if err != nil {
		return 0, fmt.Errorf("failed to remove tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read tag delete result: %w", err)
	}

	return affected, nil
}

// AddAutoTag inserts a model-produced tag. Re-running the tagging stage must
// not duplicate tags, so conflicts are ignored.
func (r *TagRepo) AddAutoTag(itemID, tag string, confidence float64) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO tags (item_id, tag, confidence, source, added_at)
		VALUES (?, ?, ?, ?, ?)
	`, itemID, tag, confidence, TagSourceAuto, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to add auto tag: %w", err)
	}
	return nil
}

func (r *TagRepo) GetItemTags(itemID string) ([]Tag, error) {
	rows, err := r.db.Query(`
		SELECT id, item_id, tag, confidence, source, added_at
		FROM tags
		WHERE item_id = ?
		ORDER BY source, COALESCE(confidence, 1.0) DESC, tag
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		err := rows.Scan(&tag.ID, &tag.ItemID, &tag.Tag, &tag.Confidence, &tag.Source, &tag.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// GetAllTags returns unique tags with usage counts, optionally filtered by
// source ("manual" or "auto"; empty for all).
func (r *TagRepo) GetAllTags(source string) ([]TagCount, error) {
	query := `
		SELECT tag, COUNT(*) AS count
		FROM tags
	`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += `
		GROUP BY tag
		ORDER BY count DESC, tag ASC
	`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count row: %w", err)
		}
		tags = append(tags, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag count rows: %w", err)
	}

	return tags, nil
}

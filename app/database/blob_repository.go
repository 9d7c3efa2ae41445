package database

import (
	"database/sql"
	"fmt"
)

var _ BlobRepository = (*BlobRepo)(nil)

// BlobRepo handles read access to stored payloads
type BlobRepo struct {
	db *DB
}

func NewBlobRepository(db *DB) *BlobRepo {
	return &BlobRepo{db: db}
}

func (r *BlobRepo) GetBlob(id string) (*Blob, error) {
	var blob Blob
	err := r.db.QueryRow(`
		SELECT id, data, thumbnail, downloaded_at FROM blobs WHERE id = ?
	`, id).Scan(&blob.ID, &blob.Data, &blob.Thumbnail, &blob.DownloadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}

	return &blob, nil
}

func (r *BlobRepo) BlobExists(id string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM blobs WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blob existence: %w", err)
	}
	return true, nil
}

func (r *BlobRepo) GetBlobSize(id string) (int64, error) {
	var size int64
	err := r.db.QueryRow(`SELECT LENGTH(data) FROM blobs WHERE id = ?`, id).Scan(&size)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get blob size: %w", err)
	}
	return size, nil
}

package ingest

import (
	"path/filepath"
	"testing"

	"github.com/tokvault/tokvault/app/database"
)

func newTestRepo(t *testing.T) *database.ItemRepo {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return database.NewItemRepository(db)
}

const sampleExport = `{
	"Your Activity": {
		"Favorite Videos": {
			"FavoriteVideoList": [
				{
					"Date": "2024-11-02 17:21:04",
					"Link": "https://www.tiktokv.com/share/video/7568062427057720590/"
				},
				{
					"Date": "2024-11-01 09:00:00",
					"Link": "https://www.tiktokv.com/share/video/7412345678901234567/"
				},
				{
					"Date": "2024-10-30 12:00:00",
					"Link": ""
				}
			]
		}
	}
}`

func TestIngestExport(t *testing.T) {
	repo := newTestRepo(t)
	ingester := NewIngester(repo)

	stats, err := ingester.Run([]byte(sampleExport))
	if err != nil {
		t.Fatalf("Ingestion failed: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Expected 3 records, got %d", stats.Total)
	}
	if stats.Inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", stats.Inserted)
	}
	if stats.Errors != 1 {
		t.Errorf("Expected 1 error for the empty link, got %d", stats.Errors)
	}

	item, err := repo.GetItem("7568062427057720590")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item == nil {
		t.Fatal("Expected ingested item to exist")
	}
	if item.SourceURL != "https://www.tiktokv.com/share/video/7568062427057720590/" {
		t.Errorf("Unexpected source URL: %s", item.SourceURL)
	}
	if item.FavoritedAt == nil {
		t.Fatal("Expected favorited_at to be parsed")
	}
	if *item.FavoritedAt != 1730568064 {
		t.Errorf("Unexpected favorited_at: %d", *item.FavoritedAt)
	}
}

func TestIngestRerunIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ingester := NewIngester(repo)

	if _, err := ingester.Run([]byte(sampleExport)); err != nil {
		t.Fatalf("First ingestion failed: %v", err)
	}

	stats, err := ingester.Run([]byte(sampleExport))
	if err != nil {
		t.Fatalf("Second ingestion failed: %v", err)
	}
	if stats.Inserted != 0 {
		t.Errorf("Expected no new inserts on rerun, got %d", stats.Inserted)
	}
	if stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped on rerun, got %d", stats.Skipped)
	}

	count, err := repo.GetItemCount()
	if err != nil {
		t.Fatalf("GetItemCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 items total, got %d", count)
	}
}

func TestIngestMalformedDocument(t *testing.T) {
	ingester := NewIngester(newTestRepo(t))

	if _, err := ingester.Run([]byte("not json")); err == nil {
		t.Error("Expected error for malformed export")
	}
}

func TestExtractID(t *testing.T) {
	cases := []struct {
		link     string
		expected string
		wantErr  bool
	}{
		{"https://www.tiktokv.com/share/video/7568062427057720590/", "7568062427057720590", false},
		{"https://www.tiktok.com/@someuser/video/123", "123", false},
		{"https://www.tiktokv.com/share/video/456", "456", false},
		{"", "", true},
		{"/", "", true},
	}

	for _, c := range cases {
		id, err := ExtractID(c.link)
		if c.wantErr {
			if err == nil {
				t.Errorf("ExtractID(%q): expected error", c.link)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractID(%q) failed: %v", c.link, err)
			continue
		}
		if id != c.expected {
			t.Errorf("ExtractID(%q) = %q, expected %q", c.link, id, c.expected)
		}
	}
}

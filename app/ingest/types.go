package ingest

// exportDocument mirrors the platform's account-data export. Only the
// favorited-item list is consumed; everything else in the export is ignored.
// Key matching is case-insensitive in encoding/json, which covers the
// "link"/"Link" variants seen across export revisions.
type exportDocument struct {
	Activity struct {
		FavoriteVideos struct {
			List []exportRecord `json:"FavoriteVideoList"`
		} `json:"Favorite Videos"`
	} `json:"Your Activity"`
}

type exportRecord struct {
	Link string `json:"link"`
	Date string `json:"date"`
}

// Stats reports the outcome of one ingestion run.
type Stats struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

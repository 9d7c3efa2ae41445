package api

import (
	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/ingest"
	"github.com/tokvault/tokvault/app/tasks"
)

// IngesterInterface registers favorites export records in the store.
type IngesterInterface interface {
	Run(data []byte) (*ingest.Stats, error)
}

var _ IngesterInterface = (*ingest.Ingester)(nil)

// CoordinatorInterface scans the store for pending work per stage.
type CoordinatorInterface interface {
	ScanAndEnqueue(stage tasks.Stage) (int, int, error)
}

var _ CoordinatorInterface = (*tasks.Coordinator)(nil)

type Handler struct {
	itemRepo    database.ItemRepository
	blobRepo    database.BlobRepository
	tagRepo     database.TagRepository
	ingester    IngesterInterface
	scheduler   tasks.SchedulerInterface
	coordinator CoordinatorInterface
}

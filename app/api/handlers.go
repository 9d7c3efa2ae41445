package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokvault/tokvault/app/database"
	"github.com/tokvault/tokvault/app/tasks"
)

func NewHandler(itemRepo database.ItemRepository, blobRepo database.BlobRepository,
	tagRepo database.TagRepository, ingester IngesterInterface,
	scheduler tasks.SchedulerInterface, coordinator CoordinatorInterface) *Handler {
	return &Handler{
		itemRepo:    itemRepo,
		blobRepo:    blobRepo,
		tagRepo:     tagRepo,
		ingester:    ingester,
		scheduler:   scheduler,
		coordinator: coordinator,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if itemCount, err := h.itemRepo.GetItemCount(); err == nil {
		health["items"] = itemCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.itemRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":          stats.Total,
		"downloaded":     stats.Downloaded,
		"transcribed":    stats.Transcribed,
		"text_extracted": stats.TextExtracted,
		"auto_tagged":    stats.AutoTagged,
		"errors":         stats.Errors,
		"deleted":        stats.Deleted,
		"private":        stats.Private,
	})
}

func (h *Handler) ListItems(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	items, err := h.itemRepo.ListItems(limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]map[string]interface{}, 0, len(items))
	for i := range items {
		views = append(views, itemView(&items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  views,
		"count":  len(views),
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetItem(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	view := itemView(item)
	view["transcript"] = item.Transcript
	view["extracted_text"] = item.ExtractedText

	if tags, err := h.tagRepo.GetItemTags(item.ID); err == nil {
		view["tags"] = tagViews(tags)
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetItemMedia(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	blob, err := h.blobRepo.GetBlob(item.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_blob", "item_id", item.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if blob == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item has no stored media"})
		return
	}

	contentType := "application/octet-stream"
	switch item.ContentKind {
	case database.KindVideo:
		contentType = "video/mp4"
	case database.KindImages:
		contentType = "application/zip"
	}

	c.Data(http.StatusOK, contentType, blob.Data)
}

func (h *Handler) GetItemThumbnail(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	blob, err := h.blobRepo.GetBlob(item.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_blob", "item_id", item.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if blob == nil || len(blob.Thumbnail) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item has no thumbnail"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", blob.Thumbnail)
}

func (h *Handler) GetItemTags(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	tags, err := h.tagRepo.GetItemTags(item.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_item_tags", "item_id", item.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item_id": item.ID, "tags": tagViews(tags)})
}

func (h *Handler) ListTags(c *gin.Context) {
	source := c.Query("source")
	if source != "" && source != database.TagSourceManual && source != database.TagSourceAuto {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source must be manual or auto"})
		return
	}

	tags, err := h.tagRepo.GetAllTags(source)
	if err != nil {
		slog.Error("Database error", "operation", "get_all_tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]map[string]interface{}, 0, len(tags))
	for _, t := range tags {
		views = append(views, map[string]interface{}{"tag": t.Tag, "count": t.Count})
	}

	c.JSON(http.StatusOK, gin.H{"tags": views, "total": len(views)})
}

func (h *Handler) APIIngest(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	stats, err := h.ingester.Run(data)
	if err != nil {
		slog.Error("Ingestion failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to ingest export",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *Handler) APIAddTag(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	var body struct {
		Tag string `json:"tag" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must contain a tag field"})
		return
	}

	err := h.tagRepo.AddManualTag(item.ID, body.Tag)
	if errors.Is(err, database.ErrTagExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists on item"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "add_manual_tag", "item_id", item.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": item.ID, "tag": body.Tag})
}

func (h *Handler) APIRemoveTag(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	tag := c.Param("tag")
	removed, err := h.tagRepo.RemoveManualTag(item.ID, tag)
	if err != nil {
		slog.Error("Database error", "operation", "remove_manual_tag", "item_id", item.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found on item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": item.ID, "tag": tag})
}

func (h *Handler) APIScanStage(c *gin.Context) {
	stage, err := tasks.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, queued, err := h.coordinator.ScanAndEnqueue(stage)
	if err != nil {
		slog.Error("Stage scan failed", "stage", string(stage), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scan failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stage":   string(stage),
		"found":   found,
		"queued":  queued,
	})
}

func (h *Handler) APIEnqueueItem(c *gin.Context) {
	stage, err := tasks.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, ok := h.loadItem(c)
	if !ok {
		return
	}

	job, err := h.scheduler.Enqueue(stage, item.ID)
	if err != nil {
		slog.Error("Failed to enqueue item", "stage", string(stage), "item_id", item.ID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"job": gin.H{
			"id":      job.ID,
			"stage":   string(job.Stage),
			"item_id": job.ItemID,
		},
	})
}

func (h *Handler) APICleanupErrors(c *gin.Context) {
	cleared, err := h.itemRepo.ClearErrorFlags()
	if err != nil {
		slog.Error("Database error", "operation", "clear_error_flags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": cleared})
}

func (h *Handler) loadItem(c *gin.Context) (*database.Item, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing item id parameter"})
		return nil, false
	}

	item, err := h.itemRepo.GetItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_item", "item_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return nil, false
	}

	return item, true
}

func itemView(item *database.Item) map[string]interface{} {
	return map[string]interface{}{
		"id":              item.ID,
		"source_url":      item.SourceURL,
		"content_kind":    item.ContentKind,
		"title":           item.Title,
		"author":          item.Author,
		"author_id":       item.AuthorID,
		"description":     item.Description,
		"created_time":    item.CreatedTime,
		"duration":        item.Duration,
		"collection_size": item.CollectionSize,
		"favorited_at":    item.FavoritedAt,
		"downloaded":      item.Downloaded,
		"transcribed":     item.Transcribed,
		"text_extracted":  item.TextExtracted,
		"auto_tagged":     item.AutoTagged,
		"has_error":       item.HasError,
		"is_deleted":      item.IsDeleted,
		"is_private":      item.IsPrivate,
		"ingested_at":     item.IngestedAt,
	}
}

func tagViews(tags []database.Tag) []map[string]interface{} {
	views := make([]map[string]interface{}, 0, len(tags))
	for _, t := range tags {
		view := map[string]interface{}{
			"tag":      t.Tag,
			"source":   t.Source,
			"added_at": t.AddedAt,
		}
		if t.Confidence != nil {
			view["confidence"] = *t.Confidence
		}
		views = append(views, view)
	}
	return views
}

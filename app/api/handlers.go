package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/ping"
	"github.com/lysyi3m/argot/app/tasks"
)

const recentPingsLimit = 20

func NewHandler(configCache *feed.ConfigCache, resourceRepo database.ResourceRepository,
	pingRepo database.PingRepository, scheduler tasks.TaskSchedulerInterface, collector *metrics.Collector) *Handler {
	return &Handler{
		resourceRepo: resourceRepo,
		pingRepo:     pingRepo,
		configCache:  configCache,
		scheduler:    scheduler,
		collector:    collector,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Resource configuration not found", "resource", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	resource, err := h.resourceRepo.GetResource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_resource", "resource", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if resource == nil {
		slog.Error("Resource not found in database", "resource", name)
		c.Status(http.StatusNotFound)
		return
	}

	if len(resource.Body) == 0 {
		c.Header("Retry-After", "60")
		c.Status(http.StatusServiceUnavailable)
		return
	}

	format := feed.Format(resource.Format)
	c.Header("X-Feed-Items", strconv.Itoa(resource.ItemCount))
	c.Header("X-Feed-Name", name)
	c.Header("X-Feed-Format", resource.Format)
	if resource.LastFetchedAt != nil {
		c.Header("X-Last-Updated", resource.LastFetchedAt.In(time.Local).Format(time.RFC3339))
	}

	if h.collector != nil {
		h.collector.DocumentsServed.WithLabelValues(name, resource.Format).Inc()
	}

	c.Data(http.StatusOK, format.ContentType(), resource.Body)
}

// PostTrackback receives a Trackback ping for a resource. Protocol errors are
// reported in the response body with a 200 status.
func (h *Handler) PostTrackback(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		h.writeTrackbackResponse(c, name, ping.Response{Error: true, Message: "unknown resource"})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.writeTrackbackResponse(c, name, ping.Response{Error: true, Message: "malformed request"})
		return
	}

	msg, err := ping.DecodeMessage(c.Request.PostForm)
	if err != nil {
		slog.Debug("Invalid trackback ping", "resource", name, "error", err)
		h.writeTrackbackResponse(c, name, ping.Response{Error: true, Message: err.Error()})
		return
	}

	_, err = h.pingRepo.CreatePing(database.Ping{
		Resource:  name,
		Direction: database.PingReceived,
		Type:      string(feed.NotifyTrackback),
		SourceURL: msg.URL.String(),
		Title:     msg.Title,
		Excerpt:   msg.Excerpt,
		BlogName:  msg.BlogName,
		Status:    database.PingStatusAccepted,
	})
	if err != nil {
		slog.Error("Database error", "operation", "create_ping", "resource", name, "error", err)
		h.writeTrackbackResponse(c, name, ping.Response{Error: true, Message: "failed to store ping"})
		return
	}

	slog.Info("Trackback received", "resource", name, "url", msg.URL.String(), "blog_name", msg.BlogName)
	h.writeTrackbackResponse(c, name, ping.Response{})
}

func (h *Handler) writeTrackbackResponse(c *gin.Context, name string, response ping.Response) {
	if h.collector != nil {
		status := string(database.PingStatusAccepted)
		if response.Error {
			status = "rejected"
		}
		h.collector.PingsReceived.WithLabelValues(name, status).Inc()
	}

	c.Header("Content-Type", "text/xml; charset=utf-8")
	c.Status(http.StatusOK)
	if err := response.Encode(c.Writer); err != nil {
		slog.Error("Failed to write trackback response", "resource", name, "error", err)
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if resourceCount, err := h.resourceRepo.GetResourceCount(); err == nil {
		health["resources"] = resourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	resources := make([]map[string]interface{}, 0, len(configs))

	for _, resourceConfig := range configs {
		info := map[string]interface{}{
			"name":             resourceConfig.Name,
			"url":              resourceConfig.URL,
			"title":            "",
			"enabled":          resourceConfig.Settings.Enabled,
			"retrieval_limit":  resourceConfig.Settings.RetrievalLimit,
			"refresh_interval": (time.Duration(resourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(resourceConfig.Filters),
			"notify":           len(resourceConfig.Notify),
		}

		if resource, err := h.resourceRepo.GetResource(resourceConfig.Name); err == nil && resource != nil {
			info["title"] = resource.Title
			info["format"] = resource.Format
			info["item_count"] = resource.ItemCount
			info["last_fetched_at"] = resource.LastFetchedAt
			info["next_fetch_at"] = resource.NextFetchAt
			info["updated_at"] = resource.UpdatedAt
		}

		resources = append(resources, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": resources,
		"total": len(resources),
	})
}

func (h *Handler) APIGetFeedDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	resourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Resource configuration not found", "resource", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	resource, err := h.resourceRepo.GetResource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_resource", "resource", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if resource == nil {
		slog.Error("Resource not found in database", "resource", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in database"})
		return
	}

	settings := resourceConfig.LoadSettings(h.configCache.Registry())
	details := map[string]interface{}{
		"name":             name,
		"url":              resourceConfig.URL,
		"title":            resource.Title,
		"format":           resource.Format,
		"enabled":          resourceConfig.Settings.Enabled,
		"retrieval_limit":  resourceConfig.Settings.RetrievalLimit,
		"refresh_interval": (time.Duration(resourceConfig.Settings.RefreshInterval) * time.Second).String(),
		"timeout":          (time.Duration(resourceConfig.Settings.Timeout) * time.Second).String(),
		"filters":          resourceConfig.Filters,
		"notify":           resourceConfig.Notify,
		"extensions": map[string]interface{}{
			"auto_detect": settings.AutoDetectExtensions,
			"supported":   settings.SupportedExtensions,
			"declared":    resource.Namespaces,
		},
	}

	details["database"] = map[string]interface{}{
		"id":              resource.ID,
		"name":            resource.Name,
		"last_fetched_at": resource.LastFetchedAt,
		"next_fetch_at":   resource.NextFetchAt,
		"created_at":      resource.CreatedAt,
		"updated_at":      resource.UpdatedAt,
	}

	details["items"] = map[string]interface{}{
		"visible":  resource.ItemCount,
		"filtered": resource.FilteredCount,
	}

	pings := map[string]interface{}{}
	if received, err := h.pingRepo.GetPingCount(name, database.PingReceived); err == nil {
		pings["received"] = received
	}
	if sent, err := h.pingRepo.GetPingCount(name, database.PingSent); err == nil {
		pings["sent"] = sent
	}
	if recent, err := h.pingRepo.GetPings(name, database.PingReceived, recentPingsLimit); err == nil {
		trackbacks := make([]gin.H, 0, len(recent))
		for _, p := range recent {
			trackbacks = append(trackbacks, gin.H{
				"url":         p.SourceURL,
				"title":       p.Title,
				"excerpt":     p.Excerpt,
				"blog_name":   p.BlogName,
				"received_at": p.CreatedAt,
			})
		}
		pings["recent"] = trackbacks
	}
	details["pings"] = pings

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	resourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "resource", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	enqueued, err := h.scheduler.RefreshResource(resourceConfig)
	if err != nil {
		slog.Error("Error enqueueing refresh tasks", "resource", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh tasks",
			"details": err.Error(),
		})
		return
	}

	taskInfo := make([]gin.H, 0, len(enqueued))
	for _, task := range enqueued {
		taskInfo = append(taskInfo, gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"feed": gin.H{
			"name": name,
			"url":  resourceConfig.URL,
		},
		"tasks": taskInfo,
	})
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
)

type SyncResourceConfigTask struct {
	Task
	ResourceConfig *feed.Config
	resourceRepo   database.ResourceRepository
}

func NewSyncResourceConfigTask(resourceConfig *feed.Config, resourceRepo database.ResourceRepository) *SyncResourceConfigTask {
	return &SyncResourceConfigTask{
		Task:           NewTask(TaskTypeSyncResourceConfig, resourceConfig.Name),
		ResourceConfig: resourceConfig,
		resourceRepo:   resourceRepo,
	}
}

func (t *SyncResourceConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.resourceRepo.UpsertResource(
		t.ResourceConfig.Name,
		t.ResourceConfig.URL)
	if err != nil {
		slog.Error("Task failed", "type", "SyncResourceConfig", "resource", t.Resource, "error", err)
		return fmt.Errorf("failed to sync resource config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncResourceConfig",
		"resource", t.Resource,
		"duration", t.GetDuration())

	return nil
}

package tasks

import (
	"github.com/lysyi3m/argot/app/feed"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background resource processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, resourceRepo, pingRepo, httpClient, parser, filterer, collector)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewFetchResourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RefreshResource(resourceConfig *feed.Config) ([]TaskInterface, error)
}

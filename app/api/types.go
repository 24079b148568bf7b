package api

import (
	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/tasks"
)

type Handler struct {
	resourceRepo database.ResourceRepository
	pingRepo     database.PingRepository
	configCache  *feed.ConfigCache
	scheduler    tasks.TaskSchedulerInterface
	collector    *metrics.Collector
}

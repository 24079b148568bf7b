package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/argot/app/cfg"
	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	resourceRepo database.ResourceRepository
	pingRepo     database.PingRepository
	configCache  *feed.ConfigCache
	httpClient   *http.Client
	parser       *feed.Parser
	filterer     *feed.Filterer
	notifier     *Notifier
	collector    *metrics.Collector
	userAgent    string
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, resourceRepo database.ResourceRepository,
	pingRepo database.PingRepository, httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer,
	notifier *Notifier, collector *metrics.Collector) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		resourceRepo: resourceRepo,
		pingRepo:     pingRepo,
		configCache:  configCache,
		httpClient:   httpClient,
		parser:       parser,
		filterer:     filterer,
		notifier:     notifier,
		collector:    collector,
		userAgent:    cfg.UserAgent,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RefreshResource enqueues a config sync followed by an immediate fetch of
// an enabled resource.
func (s *Scheduler) RefreshResource(resourceConfig *feed.Config) ([]TaskInterface, error) {
	syncTask := NewSyncResourceConfigTask(resourceConfig, s.resourceRepo)
	if err := s.EnqueueTask(syncTask); err != nil {
		return nil, fmt.Errorf("failed to enqueue sync task: %w", err)
	}
	enqueued := []TaskInterface{syncTask}

	if !resourceConfig.Settings.Enabled {
		return enqueued, nil
	}

	fetchTask := s.newFetchTask(resourceConfig)
	if err := s.EnqueueTask(fetchTask); err != nil {
		return enqueued, fmt.Errorf("failed to enqueue fetch task: %w", err)
	}

	return append(enqueued, fetchTask), nil
}

func (s *Scheduler) newFetchTask(resourceConfig *feed.Config) *FetchResourceTask {
	settings := resourceConfig.LoadSettings(s.configCache.Registry())
	task := NewFetchResourceTask(resourceConfig, settings, s.httpClient, s.parser, s.filterer, s.resourceRepo, s.userAgent)
	task.collector = s.collector
	return task
}

func (s *Scheduler) newSendPingsTask(resourceConfig *feed.Config) *SendPingsTask {
	settings := resourceConfig.LoadSettings(s.configCache.Registry())
	return NewSendPingsTask(resourceConfig, settings, s.httpClient, s.parser, s.notifier, s.resourceRepo, s.pingRepo, s.collector, s.userAgent)
}

func (s *Scheduler) enqueueStartupTasks() {
	resourceConfigs := s.configCache.GetConfigs()
	if len(resourceConfigs) == 0 {
		slog.Debug("No resource configurations found")
		return
	}

	slog.Debug("Processing resource configurations", "count", len(resourceConfigs))

	for _, resourceConfig := range resourceConfigs {
		syncTask := NewSyncResourceConfigTask(resourceConfig, s.resourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncResourceConfigTask", "resource", resourceConfig.Name, "error", err)
			continue
		}

		if !resourceConfig.Settings.Enabled {
			slog.Debug("Resource disabled, skipping FetchResourceTask", "resource", resourceConfig.Name)
			continue
		}

		fetchTask := s.newFetchTask(resourceConfig)
		if err := s.EnqueueTask(fetchTask); err != nil {
			slog.Warn("Failed to enqueue FetchResourceTask", "resource", resourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	resourceConfigs := s.configCache.GetEnabledConfigs()
	if len(resourceConfigs) == 0 {
		slog.Debug("No enabled resource configurations found")
		return
	}

	slog.Debug("Processing enabled resource configurations for task scheduling", "count", len(resourceConfigs))

	for _, resourceConfig := range resourceConfigs {
		resource, err := s.resourceRepo.GetResource(resourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get resource from database, skipping", "resource", resourceConfig.Name, "error", err)
			continue
		}
		if resource == nil {
			slog.Warn("Resource not found in database, skipping", "resource", resourceConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if resource.NextFetchAt != nil && resource.NextFetchAt.After(now) {
			slog.Debug("Resource not due for refresh yet", "resource", resourceConfig.Name, "next_fetch_at", resource.NextFetchAt)
		} else if err := s.EnqueueTask(s.newFetchTask(resourceConfig)); err != nil {
			slog.Warn("Failed to enqueue FetchResourceTask", "resource", resourceConfig.Name, "error", err)
		}

		if len(resourceConfig.Notify) > 0 && len(resource.Body) > 0 && s.notifier != nil {
			if err := s.EnqueueTask(s.newSendPingsTask(resourceConfig)); err != nil {
				slog.Warn("Failed to enqueue SendPingsTask", "resource", resourceConfig.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	s.observe(task, err)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "resource", task.GetResourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}

func (s *Scheduler) observe(task TaskInterface, err error) {
	if s.collector == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	s.collector.TasksTotal.WithLabelValues(string(task.GetType()), result).Inc()
	s.collector.TaskDuration.WithLabelValues(string(task.GetType())).Observe(task.GetDuration().Seconds())
}

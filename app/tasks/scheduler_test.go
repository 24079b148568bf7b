package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lysyi3m/argot/app/cfg"
	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/extensions"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
)

type stubTask struct {
	Task
	err      error
	executed int
}

func (s *stubTask) Execute(ctx context.Context) error {
	s.executed++
	return s.err
}

func newTestScheduler(t *testing.T) (*Scheduler, *metrics.Collector) {
	t.Helper()

	cfg.Reset()
	if _, err := cfg.LoadArgs([]string{"--worker-count", "1", "--scheduler-interval", "3600"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cfg.Reset)

	feedsDir := t.TempDir()
	config := `url: "https://example.com/feed.xml"
settings:
  enabled: true
notify:
  - type: "pingback"
    target: "https://other.example.com/post"
`
	if err := os.WriteFile(filepath.Join(feedsDir, "news.yml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	configCache := feed.NewConfigCache(feedsDir, extensions.Default())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	collector := metrics.NewWithRegistry(prometheus.NewRegistry())
	scheduler := NewScheduler(configCache, NewMockResourceRepository(), &MockPingRepository{}, nil,
		feed.NewParser(), feed.NewFilterer(), newTestNotifier(nil), collector)
	return scheduler, collector
}

func drainQueue(s *Scheduler) []TaskInterface {
	var drained []TaskInterface
	for {
		select {
		case task := <-s.taskQueue:
			drained = append(drained, task)
		default:
			return drained
		}
	}
}

func TestSchedulerStartupTasks(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	scheduler.enqueueStartupTasks()

	queued := drainQueue(scheduler)
	if len(queued) != 2 {
		t.Fatalf("Expected sync and fetch tasks, got %d", len(queued))
	}
	if queued[0].GetType() != TaskTypeSyncResourceConfig || queued[1].GetType() != TaskTypeFetchResource {
		t.Errorf("Expected sync then fetch, got %s then %s", queued[0].GetType(), queued[1].GetType())
	}
	if queued[1].GetResourceName() != "news" {
		t.Errorf("Expected resource 'news', got '%s'", queued[1].GetResourceName())
	}
}

func TestSchedulerPeriodicTasks(t *testing.T) {
	scheduler, _ := newTestScheduler(t)
	repo := scheduler.resourceRepo.(*MockResourceRepository)

	// Unknown resources are skipped until synced.
	scheduler.enqueueTasks()
	if queued := drainQueue(scheduler); len(queued) != 0 {
		t.Fatalf("Expected no tasks for an unsynced resource, got %d", len(queued))
	}

	repo.UpsertResource("news", "https://example.com/feed.xml")
	scheduler.enqueueTasks()
	queued := drainQueue(scheduler)
	if len(queued) != 1 || queued[0].GetType() != TaskTypeFetchResource {
		t.Fatalf("Expected a single fetch task for a never fetched resource, got %v", queued)
	}

	repo.UpdateDocument("news", database.Document{Format: "rss", Body: []byte("<rss/>")}, time.Now().Add(time.Hour))
	scheduler.enqueueTasks()
	queued = drainQueue(scheduler)
	if len(queued) != 1 || queued[0].GetType() != TaskTypeSendPings {
		t.Fatalf("Expected only a send pings task before the next fetch is due, got %v", queued)
	}
}

func TestSchedulerEnqueueTaskQueueFull(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	for i := 0; i < cap(scheduler.taskQueue); i++ {
		if err := scheduler.EnqueueTask(&stubTask{Task: NewTask(TaskTypeSendPings, "test")}); err != nil {
			t.Fatalf("Expected task %d to be enqueued, got: %v", i, err)
		}
	}

	if err := scheduler.EnqueueTask(&stubTask{Task: NewTask(TaskTypeSendPings, "test")}); err == nil {
		t.Error("Expected error when the task queue is full")
	}
}

func TestSchedulerExecuteTaskMetrics(t *testing.T) {
	scheduler, collector := newTestScheduler(t)

	ok := &stubTask{Task: NewTask(TaskTypeFetchResource, "test")}
	scheduler.executeTask(0, ok)

	failing := &stubTask{Task: NewTask(TaskTypeFetchResource, "test"), err: errors.New("boom")}
	failing.MaxRetries = 0
	scheduler.executeTask(0, failing)

	if ok.executed != 1 || failing.executed != 1 {
		t.Errorf("Expected each task to run once, got %d and %d", ok.executed, failing.executed)
	}
	if got := testutil.ToFloat64(collector.TasksTotal.WithLabelValues("fetch_resource", "success")); got != 1 {
		t.Errorf("Expected 1 successful task, got %v", got)
	}
	if got := testutil.ToFloat64(collector.TasksTotal.WithLabelValues("fetch_resource", "failure")); got != 1 {
		t.Errorf("Expected 1 failed task, got %v", got)
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	failing := &stubTask{Task: NewTask(TaskTypeFetchResource, "test"), err: errors.New("boom")}
	scheduler.executeTask(0, failing)

	if failing.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1, got %d", failing.GetRetryCount())
	}

	select {
	case task := <-scheduler.taskQueue:
		if task.GetID() != failing.GetID() {
			t.Errorf("Expected the failed task to be re-enqueued, got %s", task.GetID())
		}
	case <-time.After(3 * time.Second):
		t.Error("Expected the failed task to be re-enqueued within the backoff delay")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	scheduler.Start()
	scheduler.Stop()

	if err := scheduler.ctx.Err(); err == nil {
		t.Error("Expected scheduler context to be cancelled after Stop")
	}
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeSendPings, "test")

	if task.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.GetMaxRetries())
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected no retries left")
	}

	other := NewTask(TaskTypeSendPings, "test")
	if other.GetID() == task.GetID() {
		t.Error("Expected unique task IDs")
	}
}

func TestSchedulerRefreshResource(t *testing.T) {
	scheduler, _ := newTestScheduler(t)

	resourceConfig := testConfig("https://example.com/feed.xml")
	enqueued, err := scheduler.RefreshResource(resourceConfig)
	if err != nil {
		t.Fatal(err)
	}
	if len(enqueued) != 2 {
		t.Fatalf("Expected sync and fetch tasks, got %d", len(enqueued))
	}
	if enqueued[0].GetType() != TaskTypeSyncResourceConfig || enqueued[1].GetType() != TaskTypeFetchResource {
		t.Errorf("Expected sync then fetch, got %s then %s", enqueued[0].GetType(), enqueued[1].GetType())
	}

	resourceConfig.Settings.Enabled = false
	enqueued, err = scheduler.RefreshResource(resourceConfig)
	if err != nil {
		t.Fatal(err)
	}
	if len(enqueued) != 1 {
		t.Errorf("Expected only the sync task for a disabled resource, got %d", len(enqueued))
	}
}

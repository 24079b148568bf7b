package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/ping"
	"github.com/lysyi3m/argot/app/syndication"
)

// Notifier carries the outgoing ping clients and the identity sent with them.
type Notifier struct {
	Trackback *ping.TrackbackClient
	Pingback  *ping.PingbackClient
	BlogName  string
	Timeout   time.Duration
}

// SendPingsTask notifies every configured target about stored entries that
// were not announced to it yet.
type SendPingsTask struct {
	Task
	ResourceConfig *feed.Config
	settings       syndication.LoadSettings
	httpClient     *http.Client
	parser         *feed.Parser
	notifier       *Notifier
	resourceRepo   database.ResourceRepository
	pingRepo       database.PingRepository
	collector      *metrics.Collector
	userAgent      string
}

func NewSendPingsTask(resourceConfig *feed.Config, settings syndication.LoadSettings, httpClient *http.Client, parser *feed.Parser, notifier *Notifier, resourceRepo database.ResourceRepository, pingRepo database.PingRepository, collector *metrics.Collector, userAgent string) *SendPingsTask {
	return &SendPingsTask{
		Task:           NewTask(TaskTypeSendPings, resourceConfig.Name),
		ResourceConfig: resourceConfig,
		settings:       settings,
		httpClient:     httpClient,
		parser:         parser,
		notifier:       notifier,
		resourceRepo:   resourceRepo,
		pingRepo:       pingRepo,
		collector:      collector,
		userAgent:      userAgent,
	}
}

func (t *SendPingsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(t.ResourceConfig.Notify) == 0 {
		slog.Debug("No notify targets for resource", "resource", t.Resource)
		return nil
	}

	resource, err := t.resourceRepo.GetResource(t.Resource)
	if err != nil {
		return fmt.Errorf("failed to get resource: %w", err)
	}
	if resource == nil || len(resource.Body) == 0 {
		slog.Debug("Resource has no stored document yet", "resource", t.Resource)
		return nil
	}

	doc, err := t.parser.Run(resource.Body, t.settings)
	if err != nil {
		return fmt.Errorf("failed to parse stored document: %w", err)
	}

	sentCount := 0
	failedCount := 0

	for _, entry := range doc.Entries() {
		if _, err := syndication.ParseAbsoluteURL(entry.Link); err != nil {
			continue
		}

		for _, notify := range t.ResourceConfig.Notify {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sent, err := t.pingRepo.HasSentPing(t.Resource, entry.Link, notify.Target)
			if err != nil {
				return fmt.Errorf("failed to check sent pings: %w", err)
			}
			if sent {
				continue
			}

			record := database.Ping{
				Resource:  t.Resource,
				Direction: database.PingSent,
				Type:      string(notify.Type),
				SourceURL: entry.Link,
				TargetURL: notify.Target,
				Title:     entry.Title,
				BlogName:  t.notifier.BlogName,
				Status:    database.PingStatusAccepted,
			}

			if err := t.send(ctx, notify, entry, &record); err != nil {
				slog.Warn("Failed to send ping", "resource", t.Resource, "type", notify.Type, "source", entry.Link, "target", notify.Target, "error", err)
				record.Status = database.PingStatusFailed
				record.Error = err.Error()
				failedCount++
			} else {
				sentCount++
			}

			if t.collector != nil {
				t.collector.PingsSent.WithLabelValues(string(notify.Type), string(record.Status)).Inc()
			}

			if _, err := t.pingRepo.CreatePing(record); err != nil {
				return fmt.Errorf("failed to record ping: %w", err)
			}
		}
	}

	slog.Info("Task completed",
		"type", "SendPings",
		"resource", t.Resource,
		"duration", t.GetDuration(),
		"sent", sentCount,
		"failed", failedCount)

	return nil
}

func (t *SendPingsTask) send(ctx context.Context, notify feed.ConfigNotify, entry feed.Entry, record *database.Ping) error {
	sendCtx, cancel := context.WithTimeout(ctx, t.notifier.Timeout)
	defer cancel()

	switch notify.Type {
	case feed.NotifyTrackback:
		source, err := syndication.ParseAbsoluteURL(entry.Link)
		if err != nil {
			return err
		}
		excerpt := t.excerpt(sendCtx, entry)
		record.Excerpt = excerpt.Text
		if record.Title == "" {
			record.Title = excerpt.Title
		}

		return t.notifier.Trackback.Send(sendCtx, notify.Target, ping.Message{
			Title:    record.Title,
			Excerpt:  record.Excerpt,
			URL:      source,
			BlogName: t.notifier.BlogName,
		})

	case feed.NotifyPingback:
		_, err := t.notifier.Pingback.Ping(sendCtx, entry.Link, notify.Target)
		return err

	default:
		return fmt.Errorf("unsupported notify type: %s", notify.Type)
	}
}

// excerpt extracts the readable text of the entry's page. A failed
// extraction yields an empty excerpt instead of blocking the ping.
func (t *SendPingsTask) excerpt(ctx context.Context, entry feed.Entry) ping.Excerpt {
	pageURL, err := syndication.ParseAbsoluteURL(entry.Link)
	if err != nil {
		return ping.Excerpt{}
	}

	data, err := fetch(ctx, t.httpClient, entry.Link, t.userAgent)
	if err != nil {
		slog.Debug("Failed to fetch entry page for excerpt", "url", entry.Link, "error", err)
		return ping.Excerpt{}
	}

	excerpt, err := ping.ExcerptFromHTML(data, pageURL, ping.DefaultExcerptLength)
	if err != nil {
		slog.Debug("Failed to extract excerpt", "url", entry.Link, "error", err)
		return ping.Excerpt{}
	}

	return excerpt
}

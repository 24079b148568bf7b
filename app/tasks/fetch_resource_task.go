package tasks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/syndication"
)

// FetchResourceTask downloads a configured resource, loads it with the
// resource's extension settings, applies its filters and stores the
// re-serialized document.
type FetchResourceTask struct {
	Task
	ResourceConfig *feed.Config
	settings       syndication.LoadSettings
	httpClient     *http.Client
	parser         *feed.Parser
	filterer       *feed.Filterer
	resourceRepo   database.ResourceRepository
	collector      *metrics.Collector
	userAgent      string
}

func NewFetchResourceTask(resourceConfig *feed.Config, settings syndication.LoadSettings, httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer, resourceRepo database.ResourceRepository, userAgent string) *FetchResourceTask {
	return &FetchResourceTask{
		Task:           NewTask(TaskTypeFetchResource, resourceConfig.Name),
		ResourceConfig: resourceConfig,
		settings:       settings,
		httpClient:     httpClient,
		parser:         parser,
		filterer:       filterer,
		resourceRepo:   resourceRepo,
		userAgent:      userAgent,
	}
}

func (t *FetchResourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.ResourceConfig.Settings.Enabled {
		slog.Debug("Resource disabled, skipping", "resource", t.Resource)
		return nil
	}

	data, err := t.fetchResource(ctx, t.ResourceConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch resource: %w", err)
	}

	doc, err := t.parser.Run(data, t.settings)
	if err != nil {
		return fmt.Errorf("failed to parse resource: %w", err)
	}

	filtered := t.filterer.Run(doc, t.ResourceConfig)
	if t.collector != nil && filtered > 0 {
		t.collector.ItemsFiltered.WithLabelValues(t.Resource).Add(float64(filtered))
	}

	var body bytes.Buffer
	if err := doc.Save(&body); err != nil {
		return fmt.Errorf("failed to serialize resource: %w", err)
	}

	namespaces := make([]string, 0, len(doc.Namespaces()))
	for _, ns := range doc.Namespaces() {
		namespaces = append(namespaces, ns.URI)
	}

	nextFetch := time.Now().UTC().Add(time.Duration(t.ResourceConfig.Settings.RefreshInterval) * time.Second)
	err = t.resourceRepo.UpdateDocument(t.Resource, database.Document{
		Format:        string(doc.Format()),
		Title:         doc.Title(),
		Body:          body.Bytes(),
		ItemCount:     doc.ItemCount(),
		FilteredCount: filtered,
		Namespaces:    namespaces,
	}, nextFetch)
	if err != nil {
		return fmt.Errorf("failed to store resource document: %w", err)
	}

	slog.Info("Task completed",
		"type", "FetchResource",
		"resource", t.Resource,
		"format", doc.Format(),
		"duration", t.GetDuration(),
		"items", doc.ItemCount(),
		"filtered", filtered,
		"extensions", len(namespaces))

	return nil
}

func (t *FetchResourceTask) fetchResource(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.ResourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	return fetch(timeoutCtx, t.httpClient, url, t.userAgent)
}

func fetch(ctx context.Context, httpClient *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

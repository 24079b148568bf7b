package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/argot/app/database"
)

// MockResourceRepository keeps resources in memory
type MockResourceRepository struct {
	mu        sync.Mutex
	resources map[string]*database.Resource
	err       error
}

func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{resources: make(map[string]*database.Resource)}
}

func (m *MockResourceRepository) GetResource(name string) (*database.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	resource, ok := m.resources[name]
	if !ok {
		return nil, nil
	}
	copied := *resource
	return &copied, nil
}

func (m *MockResourceRepository) GetResources() ([]database.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Resource
	for _, r := range m.resources {
		out = append(out, *r)
	}
	return out, m.err
}

func (m *MockResourceRepository) GetResourceCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources), m.err
}

func (m *MockResourceRepository) UpsertResource(name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if resource, ok := m.resources[name]; ok {
		resource.URL = url
		return nil
	}
	m.resources[name] = &database.Resource{ID: "id-" + name, Name: name, URL: url}
	return nil
}

func (m *MockResourceRepository) UpdateDocument(name string, doc database.Document, nextFetch time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	resource, ok := m.resources[name]
	if !ok {
		return fmt.Errorf("resource not found: %s", name)
	}
	now := time.Now().UTC()
	resource.Format = doc.Format
	resource.Title = doc.Title
	resource.Body = doc.Body
	resource.ItemCount = doc.ItemCount
	resource.FilteredCount = doc.FilteredCount
	resource.Namespaces = doc.Namespaces
	resource.LastFetchedAt = &now
	resource.NextFetchAt = &nextFetch
	return nil
}

func (m *MockResourceRepository) UpdateNextFetch(name string, nextFetch time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	resource, ok := m.resources[name]
	if !ok {
		return fmt.Errorf("resource not found: %s", name)
	}
	resource.NextFetchAt = &nextFetch
	return nil
}

// MockPingRepository records pings in insertion order
type MockPingRepository struct {
	mu    sync.Mutex
	pings []database.Ping
}

func (m *MockPingRepository) CreatePing(ping database.Ping) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ping.ID = fmt.Sprintf("ping-%d", len(m.pings)+1)
	m.pings = append(m.pings, ping)
	return ping.ID, nil
}

func (m *MockPingRepository) GetPings(resource string, direction database.PingDirection, limit int) ([]database.Ping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Ping
	for _, p := range m.pings {
		if p.Resource == resource && p.Direction == direction {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPingRepository) GetPingCount(resource string, direction database.PingDirection) (int, error) {
	pings, err := m.GetPings(resource, direction, 0)
	return len(pings), err
}

func (m *MockPingRepository) HasSentPing(resource, sourceURL, targetURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pings {
		if p.Resource == resource && p.Direction == database.PingSent && p.Status == database.PingStatusAccepted &&
			p.SourceURL == sourceURL && p.TargetURL == targetURL {
			return true, nil
		}
	}
	return false, nil
}

package database

import (
	"time"
)

// Document is the result of one successful fetch of a resource.
type Document struct {
	Format        string
	Title         string
	Body          []byte
	ItemCount     int
	FilteredCount int
	Namespaces    []string
}

type ResourceRepository interface {
	GetResource(name string) (*Resource, error)
	GetResources() ([]Resource, error)
	GetResourceCount() (int, error)

	UpsertResource(name, url string) error
	UpdateDocument(name string, doc Document, nextFetch time.Time) error
	UpdateNextFetch(name string, nextFetch time.Time) error
}

type PingRepository interface {
	CreatePing(ping Ping) (string, error)
	GetPings(resource string, direction PingDirection, limit int) ([]Ping, error)
	GetPingCount(resource string, direction PingDirection) (int, error)
	HasSentPing(resource, sourceURL, targetURL string) (bool, error)
}

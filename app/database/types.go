package database

import (
	"time"
)

type Resource struct {
	ID            string // Database UUID
	Name          string // Configuration identifier derived from filename
	URL           string
	Format        string // rss or atom, empty until the first fetch
	Title         string
	Body          []byte // Re-serialized document
	ItemCount     int
	FilteredCount int
	Namespaces    []string // Extension namespace URIs declared by the document
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PingDirection string

const (
	PingReceived PingDirection = "received"
	PingSent     PingDirection = "sent"
)

type PingStatus string

const (
	PingStatusAccepted PingStatus = "accepted"
	PingStatusFailed   PingStatus = "failed"
)

type Ping struct {
	ID        string
	Resource  string
	Direction PingDirection
	Type      string // trackback or pingback
	SourceURL string // Entry that links to the target
	TargetURL string
	Title     string
	Excerpt   string
	BlogName  string
	Status    PingStatus
	Error     string
	CreatedAt time.Time
}

package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ PingRepository = (*PingStore)(nil)

// PingStore records received and sent Trackback/Pingback notifications
type PingStore struct {
	db *DB
}

func NewPingStore(db *DB) *PingStore {
	return &PingStore{db: db}
}

// CreatePing stores ping and returns its generated ID
func (r *PingStore) CreatePing(ping Ping) (string, error) {
	if ping.ID == "" {
		ping.ID = uuid.NewString()
	}
	if ping.CreatedAt.IsZero() {
		ping.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO pings (
			id, resource_name, direction, type, source_url, target_url,
			title, excerpt, blog_name, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ping.ID, ping.Resource, string(ping.Direction), ping.Type, ping.SourceURL, ping.TargetURL,
		ping.Title, ping.Excerpt, ping.BlogName, string(ping.Status), ping.Error, ping.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create ping: %w", err)
	}

	return ping.ID, nil
}

// GetPings returns the newest pings of a resource first. A limit of 0 returns all of them.
func (r *PingStore) GetPings(resource string, direction PingDirection, limit int) ([]Ping, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(`
		SELECT id, resource_name, direction, type, source_url, target_url,
		       title, excerpt, blog_name, status, error, created_at
		FROM pings
		WHERE resource_name = ? AND direction = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, resource, string(direction), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pings: %w", err)
	}
	defer rows.Close()

	var pings []Ping
	for rows.Next() {
		var ping Ping
		var direction, status string
		err := rows.Scan(
			&ping.ID, &ping.Resource, &direction, &ping.Type, &ping.SourceURL, &ping.TargetURL,
			&ping.Title, &ping.Excerpt, &ping.BlogName, &status, &ping.Error, &ping.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ping row: %w", err)
		}
		ping.Direction = PingDirection(direction)
		ping.Status = PingStatus(status)
		pings = append(pings, ping)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ping rows: %w", err)
	}

	return pings, nil
}

func (r *PingStore) GetPingCount(resource string, direction PingDirection) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM pings WHERE resource_name = ? AND direction = ?
	`, resource, string(direction)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pings: %w", err)
	}
	return count, nil
}

// HasSentPing reports whether an accepted ping from sourceURL to targetURL was already sent
func (r *PingStore) HasSentPing(resource, sourceURL, targetURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pings
			WHERE resource_name = ? AND direction = 'sent' AND status = 'accepted'
			  AND source_url = ? AND target_url = ?
		)
	`, resource, sourceURL, targetURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sent ping: %w", err)
	}
	return exists, nil
}

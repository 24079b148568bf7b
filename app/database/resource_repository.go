package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ResourceRepository = (*ResourceStore)(nil)

// ResourceStore handles database operations for syndicated resources
type ResourceStore struct {
	db *DB
}

func NewResourceStore(db *DB) *ResourceStore {
	return &ResourceStore{db: db}
}

const resourceColumns = `id, name, url, format, title, body, item_count, filtered_count, namespaces,
	last_fetched_at, next_fetch_at, created_at, updated_at`

// UpsertResource inserts a resource or updates the URL of an existing one
func (r *ResourceStore) UpsertResource(name, url string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO resources (id, name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			url = excluded.url,
			updated_at = excluded.updated_at
	`, uuid.NewString(), name, url, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}

	return nil
}

// UpdateDocument stores the latest fetched document and schedules the next fetch
func (r *ResourceStore) UpdateDocument(name string, doc Document, nextFetch time.Time) error {
	namespaces, err := json.Marshal(nonNilStrings(doc.Namespaces))
	if err != nil {
		return fmt.Errorf("failed to encode namespaces: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		UPDATE resources
		SET format = ?, title = ?, body = ?, item_count = ?, filtered_count = ?, namespaces = ?,
		    last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, doc.Format, doc.Title, doc.Body, doc.ItemCount, doc.FilteredCount, string(namespaces),
		now, nextFetch.UTC(), now, name)
	if err != nil {
		return fmt.Errorf("failed to update resource document: %w", err)
	}

	return requireRow(result, name)
}

// UpdateNextFetch reschedules a resource without touching its document
func (r *ResourceStore) UpdateNextFetch(name string, nextFetch time.Time) error {
	result, err := r.db.Exec(`
		UPDATE resources
		SET next_fetch_at = ?, last_fetched_at = ?, updated_at = ?
		WHERE name = ?
	`, nextFetch.UTC(), time.Now().UTC(), time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to update next fetch time: %w", err)
	}

	return requireRow(result, name)
}

// GetResource returns nil when no resource has the given name
func (r *ResourceStore) GetResource(name string) (*Resource, error) {
	row := r.db.QueryRow(`SELECT `+resourceColumns+` FROM resources WHERE name = ?`, name)

	resource, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return resource, nil
}

func (r *ResourceStore) GetResources() ([]Resource, error) {
	rows, err := r.db.Query(`SELECT ` + resourceColumns + ` FROM resources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get resources: %w", err)
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		resources = append(resources, *resource)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource rows: %w", err)
	}

	return resources, nil
}

func (r *ResourceStore) GetResourceCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*Resource, error) {
	var resource Resource
	var namespaces string
	var lastFetched, nextFetch sql.NullTime

	err := row.Scan(
		&resource.ID, &resource.Name, &resource.URL, &resource.Format, &resource.Title, &resource.Body,
		&resource.ItemCount, &resource.FilteredCount, &namespaces,
		&lastFetched, &nextFetch, &resource.CreatedAt, &resource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(namespaces), &resource.Namespaces); err != nil {
		return nil, fmt.Errorf("failed to decode namespaces: %w", err)
	}
	if lastFetched.Valid {
		resource.LastFetchedAt = &lastFetched.Time
	}
	if nextFetch.Valid {
		resource.NextFetchAt = &nextFetch.Time
	}

	return &resource, nil
}

func requireRow(result sql.Result, name string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("resource not found: %s", name)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

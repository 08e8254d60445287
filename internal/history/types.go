// Package history provides persistent storage for protein search history.
// Each reconciled record is archived so past lookups can be replayed without
// hitting the upstream sources again.
package history

import (
	"context"
	"time"

	"github.com/protein-atlas-server/internal/domain"
)

// SearchRecord is one archived search result. Record carries the full
// reconciled protein record as it was returned to the caller.
type SearchRecord struct {
	ID         string                `json:"id"`
	Query      string                `json:"query"`
	DataSource string                `json:"data_source"`
	Record     *domain.ProteinRecord `json:"record"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Store defines the interface for search history storage operations.
type Store interface {
	// Save archives a search record. The record's ID is assigned if empty.
	Save(ctx context.Context, record *SearchRecord) error

	// Get retrieves an archived search by its ID. A missing ID returns
	// (nil, nil).
	Get(ctx context.Context, id string) (*SearchRecord, error)

	// List returns archived searches, newest first, with pagination.
	List(ctx context.Context, limit, offset int) ([]*SearchRecord, error)

	// Count returns the total number of archived searches.
	Count(ctx context.Context) (int64, error)

	// Delete removes an archived search by ID.
	Delete(ctx context.Context, id string) error

	// Close closes the store and releases resources.
	Close() error
}

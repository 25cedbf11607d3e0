package ports

import (
	"context"

	"nav-tracking-service/internal/domain"
)

// TripStore records trip summaries when sessions stop, and lists recent ones.
type TripStore interface {
	Record(ctx context.Context, summary domain.TripSummary) error
	Recent(ctx context.Context, limit int) ([]domain.TripSummary, error)
}

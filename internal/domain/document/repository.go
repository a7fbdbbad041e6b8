package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
)

// Repository persists procurement documents
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByNumber(ctx context.Context, t Type, number string) (*Document, error)
	FindByType(ctx context.Context, t Type, filter shared.Filter) ([]Document, error)
	CountByType(ctx context.Context, t Type, filter shared.Filter) (int64, error)
	// FindBySource returns the documents of a type derived from the
	// given predecessor
	FindBySource(ctx context.Context, t Type, sourceID uuid.UUID) ([]Document, error)
	Save(ctx context.Context, doc *Document) error
	// Delete removes a document physically. Implementations must
	// refuse documents that have left draft.
	Delete(ctx context.Context, doc *Document) error
}

// SequenceGenerator produces human-readable document numbers from
// per-period counters. Two concurrent calls for the same (type,
// period) pair never return the same counter value.
type SequenceGenerator interface {
	Next(ctx context.Context, t Type, periodKey string) (string, error)
}

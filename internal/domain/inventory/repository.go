package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists supply snapshots
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supply, error)
	FindByNumber(ctx context.Context, number string) (*Supply, error)
	// FindByNumberForUpdate loads a supply under an exclusive row
	// lock so concurrent issuances serialize on the availability
	// check. Callers must hold a transaction.
	FindByNumberForUpdate(ctx context.Context, number string) (*Supply, error)
	FindBySourceDocument(ctx context.Context, documentID uuid.UUID) ([]Supply, error)
	FindAll(ctx context.Context) ([]Supply, error)
	Save(ctx context.Context, supply *Supply) error
	// IssuedQuantity sums the quantity of the given supply already
	// issued by inventory issuances other than excludeDocumentID.
	// Pass uuid.Nil to count everything.
	IssuedQuantity(ctx context.Context, supplyID uuid.UUID, excludeDocumentID uuid.UUID) (int64, error)
}

// NumberGenerator produces supply numbers from a zero-padded counter.
// Two concurrent calls never return the same counter value.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

package workflow

import (
	"context"

	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/inventory"
)

// Repositories bundles the persistence ports a workflow operation
// touches. Inside Execute they are bound to the ambient transaction.
type Repositories struct {
	Documents     document.Repository
	Supplies      inventory.Repository
	Audit         document.AuditTrail
	Sequences     document.SequenceGenerator
	SupplyNumbers inventory.NumberGenerator
}

// UnitOfWork runs a function against transaction-bound repositories.
// The function's error rolls the whole transaction back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// Repositories returns repositories bound to the base connection,
	// for reads that need no transaction
	Repositories() Repositories
}

package persistence

import (
	"context"

	"github.com/procure/backend/internal/application/workflow"
	"gorm.io/gorm"
)

// GormUnitOfWork binds the workflow repositories to one gorm
// connection and runs workflow operations inside a single transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work over a gorm connection
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn with repositories bound to one transaction. An error
// from fn rolls everything back.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos workflow.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, bindRepositories(tx))
	})
}

// Repositories returns repositories bound to the base connection
func (u *GormUnitOfWork) Repositories() workflow.Repositories {
	return bindRepositories(u.db)
}

func bindRepositories(db *gorm.DB) workflow.Repositories {
	sequences := NewGormSequenceRepository(db)
	return workflow.Repositories{
		Documents:     NewGormDocumentRepository(db),
		Supplies:      NewGormSupplyRepository(db),
		Audit:         NewGormAuditTrail(db),
		Sequences:     sequences,
		SupplyNumbers: sequences.SupplyNumbers(),
	}
}

var _ workflow.UnitOfWork = (*GormUnitOfWork)(nil)

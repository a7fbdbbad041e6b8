package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/inventory"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// supplyScope is the counter scope for inventory supply numbers, which
// run in a single prefix-based sequence independent of periods
const (
	supplyScope  = "inventory_supply"
	supplyPrefix = "INV"
)

// GormSequenceRepository hands out document and supply numbers from
// per-scope, per-period counter rows. The increment runs under an
// exclusive row lock so two concurrent callers never observe the same
// value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next returns the next document number for a type and period,
// formatted as {period}-{counter:04d}
func (r *GormSequenceRepository) Next(ctx context.Context, t document.Type, periodKey string) (string, error) {
	value, err := r.increment(ctx, string(t), periodKey, r.seedFromDocuments(t, periodKey))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", periodKey, value), nil
}

// NextSupplyNumber returns the next supply number, formatted as
// INV-{counter:04d}
func (r *GormSequenceRepository) NextSupplyNumber(ctx context.Context) (string, error) {
	value, err := r.increment(ctx, supplyScope, "", r.seedFromSupplies())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", supplyPrefix, value), nil
}

// seedFunc computes the highest counter already present in existing
// numbers, used when a counter row is created for a scope that predates
// the counters table
type seedFunc func(tx *gorm.DB) (int64, error)

// errCounterConflict marks a counter insert that lost the race to a
// concurrent first caller for the same scope and period
var errCounterConflict = errors.New("sequence counter already created")

func (r *GormSequenceRepository) increment(ctx context.Context, scope, periodKey string, seed seedFunc) (int64, error) {
	next, err := r.incrementOnce(ctx, scope, periodKey, seed)
	if errors.Is(err, errCounterConflict) {
		// The winner has committed the row by now, so the retry takes
		// the plain increment path.
		next, err = r.incrementOnce(ctx, scope, periodKey, seed)
	}
	return next, err
}

func (r *GormSequenceRepository) incrementOnce(ctx context.Context, scope, periodKey string, seed seedFunc) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter models.SequenceCounterModel
		query := tx.Where("scope = ? AND period_key = ?", scope, periodKey)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := query.First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seeded, seedErr := seed(tx)
			if seedErr != nil {
				return fmt.Errorf("seed counter %s/%s: %w", scope, periodKey, seedErr)
			}
			counter = models.SequenceCounterModel{
				Scope:     scope,
				PeriodKey: periodKey,
				Value:     seeded + 1,
			}
			// A concurrent first caller may have inserted the row
			// between our miss and this create; the unique index
			// rejects the duplicate and increment retries the whole
			// transaction once against the row that won.
			if createErr := tx.Create(&counter).Error; createErr != nil {
				return fmt.Errorf("create counter %s/%s: %w", scope, periodKey,
					errors.Join(errCounterConflict, createErr))
			}
		case err != nil:
			return err
		default:
			counter.Value++
			if saveErr := tx.Save(&counter).Error; saveErr != nil {
				return fmt.Errorf("save counter %s/%s: %w", scope, periodKey, saveErr)
			}
		}
		next = counter.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *GormSequenceRepository) seedFromDocuments(t document.Type, periodKey string) seedFunc {
	return func(tx *gorm.DB) (int64, error) {
		var numbers []string
		if err := tx.Model(&models.DocumentModel{}).
			Where("type = ? AND period = ?", t, periodKey).
			Pluck("number", &numbers).Error; err != nil {
			return 0, err
		}
		return highestCounter(numbers), nil
	}
}

func (r *GormSequenceRepository) seedFromSupplies() seedFunc {
	return func(tx *gorm.DB) (int64, error) {
		var numbers []string
		if err := tx.Model(&models.SupplyModel{}).
			Pluck("number", &numbers).Error; err != nil {
			return 0, err
		}
		return highestCounter(numbers), nil
	}
}

// highestCounter parses each number by stripping everything up to the
// last separator and casting the digits to an integer, matching how
// callers order zero-padded numbers
func highestCounter(numbers []string) int64 {
	var highest int64
	for _, number := range numbers {
		if value, ok := parseCounter(number); ok && value > highest {
			highest = value
		}
	}
	return highest
}

func parseCounter(number string) (int64, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number[idx+1:])
	if digits == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

var (
	_ document.SequenceGenerator = (*GormSequenceRepository)(nil)
	_ inventory.NumberGenerator  = supplyNumberAdapter{}
)

// supplyNumberAdapter presents the supply sequence as the inventory
// numbering port
type supplyNumberAdapter struct {
	repo *GormSequenceRepository
}

// SupplyNumbers returns the inventory-facing numbering port backed by
// this repository
func (r *GormSequenceRepository) SupplyNumbers() inventory.NumberGenerator {
	return supplyNumberAdapter{repo: r}
}

// Next implements inventory.NumberGenerator
func (a supplyNumberAdapter) Next(ctx context.Context) (string, error) {
	return a.repo.NextSupplyNumber(ctx)
}

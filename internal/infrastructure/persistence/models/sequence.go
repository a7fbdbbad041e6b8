package models

import "time"

// SequenceCounterModel is one per-scope, per-period counter row. The
// row is incremented under an exclusive lock so two concurrent callers
// never observe the same value.
type SequenceCounterModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Scope     string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_sequence_counters_scope_period,priority:1"`
	PeriodKey string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_sequence_counters_scope_period,priority:2"`
	Value     int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}

package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StatusHistory maps each status a document has entered to the
// timestamp it was first entered. Entries are append-only: re-entering
// a status keeps the original timestamp.
type StatusHistory map[Status]time.Time

// NewStatusHistory returns a history seeded with the initial status
func NewStatusHistory(initial Status, at time.Time) StatusHistory {
	return StatusHistory{initial: at}
}

// Record stores the first-entry timestamp for a status. It returns
// false without modifying the map when the status is already present.
func (h StatusHistory) Record(s Status, at time.Time) bool {
	if _, exists := h[s]; exists {
		return false
	}
	h[s] = at
	return true
}

// Has returns true if the status has ever been entered
func (h StatusHistory) Has(s Status) bool {
	_, ok := h[s]
	return ok
}

// At returns the first-entry timestamp of a status
func (h StatusHistory) At(s Status) (time.Time, bool) {
	ts, ok := h[s]
	return ts, ok
}

// Clone returns a deep copy of the history
func (h StatusHistory) Clone() StatusHistory {
	c := make(StatusHistory, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}

// Value implements driver.Valuer, storing the history as a JSON object
// keyed by status name
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner
func (h *StatusHistory) Scan(value any) error {
	if value == nil {
		*h = make(StatusHistory)
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StatusHistory", value)
	}
	m := make(StatusHistory)
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("invalid status history payload: %w", err)
	}
	*h = m
	return nil
}

package document

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one append-only record of a workflow transition
type AuditEntry struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	DocumentType Type
	Number       string
	Action       Action
	FromStatus   Status
	ToStatus     Status
	ActorID      *uuid.UUID
	At           time.Time
}

// AuditTrail persists and reads transition audit entries
type AuditTrail interface {
	Append(ctx context.Context, entry *AuditEntry) error
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]AuditEntry, error)
}

// NewAuditEntryFromEvent builds the audit record for a transition
// event raised by the aggregate, stamped with the event's occurrence
// time
func NewAuditEntryFromEvent(e *TransitionedEvent) *AuditEntry {
	return &AuditEntry{
		ID:           uuid.New(),
		DocumentID:   e.AggregateID(),
		DocumentType: e.DocumentType,
		Number:       e.Number,
		Action:       e.Action,
		FromStatus:   e.FromStatus,
		ToStatus:     e.ToStatus,
		ActorID:      e.ActorID,
		At:           e.OccurredAt(),
	}
}

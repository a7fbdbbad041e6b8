package document

import (
	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
)

// Event types raised by the document aggregate
const (
	EventTypeCreated      = "document.created"
	EventTypeTransitioned = "document.transitioned"
)

// CreatedEvent is raised when a document is created in draft
type CreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType Type   `json:"document_type"`
	Number       string `json:"number"`
}

// NewCreatedEvent creates a CreatedEvent for a document
func NewCreatedEvent(d *Document) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, string(d.Type), d.ID),
		DocumentType:    d.Type,
		Number:          d.Number,
	}
}

// TransitionedEvent is raised on every successful workflow transition
type TransitionedEvent struct {
	shared.BaseDomainEvent
	DocumentType Type       `json:"document_type"`
	Number       string     `json:"number"`
	Action       Action     `json:"action"`
	FromStatus   Status     `json:"from_status"`
	ToStatus     Status     `json:"to_status"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
}

// NewTransitionedEvent creates a TransitionedEvent for a transition
func NewTransitionedEvent(d *Document, action Action, from, to Status, actorID *uuid.UUID) *TransitionedEvent {
	return &TransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitioned, string(d.Type), d.ID),
		DocumentType:    d.Type,
		Number:          d.Number,
		Action:          action,
		FromStatus:      from,
		ToStatus:        to,
		ActorID:         actorID,
	}
}

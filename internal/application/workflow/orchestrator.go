package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// sourceRule constrains the predecessor a document type may be derived
// from and the statuses the predecessor must be in at creation time
type sourceRule struct {
	sourceType document.Type
	statuses   []document.Status
}

var sourceRules = map[document.Type]sourceRule{
	document.TypeRequestForQuotation: {document.TypePurchaseRequest, []document.Status{document.StatusForCanvassing, document.StatusForRecanvassing}},
	document.TypeAbstractOfQuotation: {document.TypePurchaseRequest, []document.Status{document.StatusForAbstract, document.StatusPartiallyAwarded}},
	document.TypePurchaseOrder:       {document.TypeAbstractOfQuotation, []document.Status{document.StatusAwarded}},
	document.TypeInspectionReport:    {document.TypePurchaseOrder, []document.Status{document.StatusReceived}},
	document.TypeObligationRequest:   {document.TypePurchaseRequest, []document.Status{document.StatusAwarded, document.StatusCompleted}},
	document.TypeDisbursementVoucher: {document.TypeObligationRequest, []document.Status{document.StatusObligated}},
}

// Orchestrator is the façade of the workflow engine: it serializes
// operations per document, runs validate-then-commit transitions in a
// single transaction and returns the reloaded document.
type Orchestrator struct {
	uow        UnitOfWork
	locker     shared.DocumentLocker
	propagator *Propagator
	logger     *zap.Logger
	lockTTL    time.Duration
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(uow UnitOfWork, locker shared.DocumentLocker, propagator *Propagator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		uow:        uow,
		locker:     locker,
		propagator: propagator,
		logger:     logger,
		lockTTL:    30 * time.Second,
	}
}

// CreateDraft creates a document in draft, numbers it for its period
// and loads the initial line set
func (o *Orchestrator) CreateDraft(ctx context.Context, req CreateDocumentRequest) (*DocumentDTO, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown document type %q", req.Type))
	}
	period := req.Period
	if period == "" {
		period = time.Now().Format("2006-01")
	}
	inputs, err := ToItemInputs(req.Items)
	if err != nil {
		return nil, err
	}

	var created *document.Document
	err = o.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		if req.SourceID != nil {
			if err := o.validateSource(ctx, repos, req.Type, *req.SourceID); err != nil {
				return err
			}
		}
		number, err := repos.Sequences.Next(ctx, req.Type, period)
		if err != nil {
			return fmt.Errorf("document numbering: %w", err)
		}
		doc, err := document.New(req.Type, number, period)
		if err != nil {
			return err
		}
		if req.SourceID != nil {
			if err := doc.SetSource(*req.SourceID); err != nil {
				return err
			}
		}
		doc.SetRemark(req.Remark)
		if len(inputs) > 0 {
			if err := doc.ReplaceItems(inputs); err != nil {
				return err
			}
		}
		if err := repos.Documents.Save(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Created document",
		zap.String("type", string(created.Type)),
		zap.String("number", created.Number),
	)
	return FromDocument(created), nil
}

// Perform applies a workflow action to a document: per-document lock,
// optional item replacement, transition, cascade, one audit entry, one
// transaction. Returns the reloaded document.
func (o *Orchestrator) Perform(ctx context.Context, req PerformRequest) (*DocumentDTO, error) {
	acquired, release, err := o.locker.TryAcquire(ctx, req.DocumentID, o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire document lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrConcurrentModification
	}
	defer release()

	if !req.Extent.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Unknown extent %q", req.Extent))
	}
	extent := req.Extent
	if extent == "" && (req.Action == document.ActionAward || req.Action == document.ActionAccept) {
		extent = document.ExtentFull
	}
	inputs, err := ToItemInputs(req.Items)
	if err != nil {
		return nil, err
	}

	var updated *document.Document
	err = o.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		doc, err := repos.Documents.FindByID(ctx, req.DocumentID)
		if err != nil {
			return err
		}
		if doc.Type != req.Type {
			return shared.ErrNotFound
		}

		if req.Items != nil {
			if err := doc.ReplaceItems(inputs); err != nil {
				return err
			}
		}

		effects, err := doc.Apply(req.Action, extent, req.ActorID)
		if err != nil {
			return err
		}

		for _, effect := range effects {
			if err := o.propagator.Apply(ctx, repos, doc, effect); err != nil {
				return wrapCascade(effect, err)
			}
		}

		if err := repos.Documents.Save(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}

		// Drain the events the aggregate raised during Apply; each
		// transition becomes one audit record inside the same
		// transaction.
		for _, raised := range doc.GetDomainEvents() {
			transitioned, ok := raised.(*document.TransitionedEvent)
			if !ok {
				continue
			}
			if err := repos.Audit.Append(ctx, document.NewAuditEntryFromEvent(transitioned)); err != nil {
				return fmt.Errorf("append audit entry: %w", err)
			}
		}
		doc.ClearDomainEvents()

		reloaded, err := repos.Documents.FindByID(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("reload document: %w", err)
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Performed workflow action",
		zap.String("type", string(updated.Type)),
		zap.String("number", updated.Number),
		zap.String("action", string(req.Action)),
		zap.String("status", string(updated.Status)),
	)
	return FromDocument(updated), nil
}

// Get loads one document by id
func (o *Orchestrator) Get(ctx context.Context, t document.Type, id uuid.UUID) (*DocumentDTO, error) {
	doc, err := o.uow.Repositories().Documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != t {
		return nil, shared.ErrNotFound
	}
	return FromDocument(doc), nil
}

// GetByNumber loads one document by its human-readable number
func (o *Orchestrator) GetByNumber(ctx context.Context, t document.Type, number string) (*DocumentDTO, error) {
	doc, err := o.uow.Repositories().Documents.FindByNumber(ctx, t, number)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc), nil
}

// List returns documents of a type with paging and an optional status
// filter, plus the unpaged count
func (o *Orchestrator) List(ctx context.Context, t document.Type, filter shared.Filter) ([]*DocumentDTO, int64, error) {
	repos := o.uow.Repositories()
	docs, err := repos.Documents.FindByType(ctx, t, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := repos.Documents.CountByType(ctx, t, filter)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*DocumentDTO, 0, len(docs))
	for idx := range docs {
		dtos = append(dtos, FromDocument(&docs[idx]))
	}
	return dtos, total, nil
}

// AuditTrail returns the transition records of a document
func (o *Orchestrator) AuditTrail(ctx context.Context, id uuid.UUID) ([]AuditEntryDTO, error) {
	entries, err := o.uow.Repositories().Audit.FindByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromAuditEntries(entries), nil
}

// Delete removes a draft document. Documents that have left draft
// follow the soft lifecycle and can only be cancelled.
func (o *Orchestrator) Delete(ctx context.Context, t document.Type, id uuid.UUID) error {
	return o.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		doc, err := repos.Documents.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if doc.Type != t {
			return shared.ErrNotFound
		}
		if !doc.CanDelete() {
			return shared.NewDomainError("ILLEGAL_TRANSITION",
				fmt.Sprintf("Document %s has left draft and cannot be deleted", doc.Number))
		}
		return repos.Documents.Delete(ctx, doc)
	})
}

// validateSource checks the predecessor reference of a new document
// against the derivation rules
func (o *Orchestrator) validateSource(ctx context.Context, repos Repositories, t document.Type, sourceID uuid.UUID) error {
	rule, constrained := sourceRules[t]
	if !constrained {
		return nil
	}
	source, err := repos.Documents.FindByID(ctx, sourceID)
	if err != nil {
		return err
	}
	if source.Type != rule.sourceType {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("A %s must derive from a %s, got %s", t, rule.sourceType, source.Type))
	}
	for _, allowed := range rule.statuses {
		if source.Status == allowed {
			return nil
		}
	}
	return shared.NewDomainError("ILLEGAL_TRANSITION",
		fmt.Sprintf("Cannot derive a %s from %s in status %q", t, source.Number, source.Status))
}

// wrapCascade surfaces a handler failure as CASCADE_FAILURE carrying
// the originating error, while rollback undoes the triggering
// transition together with everything the cascade touched
func wrapCascade(effect document.Effect, err error) error {
	return shared.NewDomainError("CASCADE_FAILURE",
		fmt.Sprintf("Effect %q failed: %v", effect.Kind, err))
}

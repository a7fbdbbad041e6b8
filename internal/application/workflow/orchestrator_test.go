package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/application/workflow"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/infrastructure/locks"
	"github.com/procure/backend/internal/infrastructure/persistence"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	orchestrator *workflow.Orchestrator
	locker       shared.DocumentLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DocumentModel{},
		&models.DocumentItemModel{},
		&models.SupplyModel{},
		&models.AuditLogModel{},
		&models.SequenceCounterModel{},
	))

	locker := locks.NewMemoryLocker()
	t.Cleanup(func() { _ = locker.Close() })

	uow := persistence.NewGormUnitOfWork(db)
	orchestrator := workflow.NewOrchestrator(uow, locker, workflow.NewPropagator(nil), nil)
	return &fixture{db: db, orchestrator: orchestrator, locker: locker}
}

func (f *fixture) create(t *testing.T, req workflow.CreateDocumentRequest) *workflow.DocumentDTO {
	t.Helper()
	dto, err := f.orchestrator.CreateDraft(context.Background(), req)
	require.NoError(t, err)
	return dto
}

func (f *fixture) perform(t *testing.T, docType document.Type, id uuid.UUID, action document.Action) *workflow.DocumentDTO {
	t.Helper()
	dto, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       docType,
		DocumentID: id,
		Action:     action,
	})
	require.NoError(t, err)
	return dto
}

// walkToForAbstract drives a fresh purchase request to for_abstract
func (f *fixture) walkToForAbstract(t *testing.T, items []workflow.ItemPayload) *workflow.DocumentDTO {
	t.Helper()
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
		Items:  items,
	})
	for _, action := range []document.Action{
		document.ActionSubmit,
		document.ActionApproveCashAvailability,
		document.ActionApprove,
		document.ActionIssueRfq,
		document.ActionCompleteCanvassing,
	} {
		f.perform(t, document.TypePurchaseRequest, pr.ID, action)
	}
	dto, err := f.orchestrator.Get(context.Background(), document.TypePurchaseRequest, pr.ID)
	require.NoError(t, err)
	require.Equal(t, document.StatusForAbstract, dto.Status)
	return dto
}

func supplierItems(supplierX, supplierY uuid.UUID) []workflow.ItemPayload {
	return []workflow.ItemPayload{
		{LineKey: "pr1-line1", Description: "Bond paper", Unit: "ream", Quantity: 10, UnitCost: "25.00", SupplierID: &supplierX},
		{LineKey: "pr1-line2", Description: "Toner", Unit: "piece", Quantity: 3, UnitCost: "100.50", SupplierID: &supplierX},
		{LineKey: "pr1-line3", Description: "Ballpen", Unit: "box", Quantity: 5, UnitCost: "80.00", SupplierID: &supplierY},
	}
}

func TestCreateDraftComputesTotals(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
		Items: []workflow.ItemPayload{
			{LineKey: "line1", Quantity: 10, UnitCost: "25.00"},
			{LineKey: "line2", Quantity: 3, UnitCost: "100.50"},
		},
	})
	assert.Equal(t, "2026-06-0001", pr.Number)
	assert.Equal(t, document.StatusDraft, pr.Status)
	assert.Equal(t, "551.50", pr.TotalAmount)
	assert.Contains(t, pr.StatusHistory, "draft")
}

func TestPerformIllegalTransitionLeavesDocumentUntouched(t *testing.T) {
	f := newFixture(t)
	po := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseOrder,
		Period: "2026-06",
		Items:  []workflow.ItemPayload{{LineKey: "a", Quantity: 1, UnitCost: "10.00"}},
	})

	_, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypePurchaseOrder,
		DocumentID: po.ID,
		Action:     document.ActionApprove,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ILLEGAL_TRANSITION", domainErr.Code)

	reloaded, err := f.orchestrator.Get(context.Background(), document.TypePurchaseOrder, po.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusDraft, reloaded.Status)
	assert.Equal(t, "10.00", reloaded.TotalAmount)
	assert.Len(t, reloaded.Items, 1)

	trail, err := f.orchestrator.AuditTrail(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Empty(t, trail, "failed transitions leave no audit entries")
}

func TestIssueRfqSpawnsQuotationRequest(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
		Items:  []workflow.ItemPayload{{LineKey: "a", Quantity: 2, UnitCost: "50.00"}},
	})
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionSubmit)
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionApproveCashAvailability)
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionApprove)
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionIssueRfq)

	rfqs, _, err := f.orchestrator.List(context.Background(), document.TypeRequestForQuotation, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, rfqs, 1)
	assert.Equal(t, pr.ID, *rfqs[0].SourceID)
	assert.Equal(t, "100.00", rfqs[0].TotalAmount)
	require.Len(t, rfqs[0].Items, 1)
	assert.Equal(t, "a", rfqs[0].Items[0].LineKey)
}

func TestAwardSpawnsPurchaseOrdersPerSupplier(t *testing.T) {
	f := newFixture(t)
	supplierX, supplierY := uuid.New(), uuid.New()

	pr := f.walkToForAbstract(t, []workflow.ItemPayload{
		{LineKey: "pr1-line1", Description: "Bond paper", Unit: "ream", Quantity: 10, UnitCost: "25.00"},
		{LineKey: "pr1-line2", Description: "Toner", Unit: "piece", Quantity: 3, UnitCost: "100.50"},
		{LineKey: "pr1-line3", Description: "Ballpen", Unit: "box", Quantity: 5, UnitCost: "80.00"},
	})
	aoq := f.create(t, workflow.CreateDocumentRequest{
		Type:     document.TypeAbstractOfQuotation,
		Period:   "2026-06",
		SourceID: &pr.ID,
		Items:    supplierItems(supplierX, supplierY),
	})
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionSubmit)
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionApprove)

	awarded, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypeAbstractOfQuotation,
		DocumentID: aoq.ID,
		Action:     document.ActionAward,
		Extent:     document.ExtentFull,
	})
	require.NoError(t, err)
	assert.Equal(t, document.StatusAwarded, awarded.Status)

	orders, _, err := f.orchestrator.List(context.Background(), document.TypePurchaseOrder, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, orders, 2, "one purchase order per awardee supplier")

	bySupplier := make(map[uuid.UUID]*workflow.DocumentDTO)
	for _, order := range orders {
		require.NotNil(t, order.SupplierID)
		require.Equal(t, aoq.ID, *order.SourceID)
		require.Equal(t, document.StatusDraft, order.Status)
		bySupplier[*order.SupplierID] = order
	}
	require.Len(t, bySupplier[supplierX].Items, 2)
	assert.Equal(t, "551.50", bySupplier[supplierX].TotalAmount)
	require.Len(t, bySupplier[supplierY].Items, 1)
	assert.Equal(t, "400.00", bySupplier[supplierY].TotalAmount)

	// The originating request advances together with the award
	request, err := f.orchestrator.Get(context.Background(), document.TypePurchaseRequest, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusAwarded, request.Status)
}

func TestAwardWithoutSuppliersRollsBackTransition(t *testing.T) {
	f := newFixture(t)
	pr := f.walkToForAbstract(t, []workflow.ItemPayload{
		{LineKey: "a", Quantity: 1, UnitCost: "10.00"},
	})
	aoq := f.create(t, workflow.CreateDocumentRequest{
		Type:     document.TypeAbstractOfQuotation,
		Period:   "2026-06",
		SourceID: &pr.ID,
		Items:    []workflow.ItemPayload{{LineKey: "a", Quantity: 1, UnitCost: "10.00"}},
	})
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionSubmit)
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionApprove)

	_, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypeAbstractOfQuotation,
		DocumentID: aoq.ID,
		Action:     document.ActionAward,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CASCADE_FAILURE", domainErr.Code)

	// Transition rolled back: no status change, no purchase orders
	reloaded, err := f.orchestrator.Get(context.Background(), document.TypeAbstractOfQuotation, aoq.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusApproved, reloaded.Status)

	orders, _, err := f.orchestrator.List(context.Background(), document.TypePurchaseOrder, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestReceiptRegistersSuppliesAndIssuanceDeducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplierX := uuid.New()

	pr := f.walkToForAbstract(t, []workflow.ItemPayload{
		{LineKey: "a", Description: "Bond paper", Unit: "ream", Quantity: 100, UnitCost: "245.50"},
	})
	aoq := f.create(t, workflow.CreateDocumentRequest{
		Type:     document.TypeAbstractOfQuotation,
		Period:   "2026-06",
		SourceID: &pr.ID,
		Items: []workflow.ItemPayload{
			{LineKey: "a", Description: "Bond paper", Unit: "ream", Quantity: 100, UnitCost: "245.50", SupplierID: &supplierX},
		},
	})
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionSubmit)
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionApprove)
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionAward)

	orders, _, err := f.orchestrator.List(ctx, document.TypePurchaseOrder, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	po := orders[0]

	f.perform(t, document.TypePurchaseOrder, po.ID, document.ActionSubmit)
	f.perform(t, document.TypePurchaseOrder, po.ID, document.ActionApprove)
	f.perform(t, document.TypePurchaseOrder, po.ID, document.ActionIssue)
	f.perform(t, document.TypePurchaseOrder, po.ID, document.ActionReceive)

	supplies := persistence.NewGormSupplyRepository(f.db)
	registered, err := supplies.FindBySourceDocument(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, registered, 1)
	assert.Equal(t, "INV-0001", registered[0].Number)
	assert.Equal(t, int64(100), registered[0].Quantity)

	issue := func(quantity int64) error {
		issuance := f.create(t, workflow.CreateDocumentRequest{
			Type:   document.TypeInventoryIssuance,
			Period: "2026-06",
			Items: []workflow.ItemPayload{
				{LineKey: "INV-0001", Quantity: quantity, UnitCost: "245.50"},
			},
		})
		f.perform(t, document.TypeInventoryIssuance, issuance.ID, document.ActionSubmit)
		f.perform(t, document.TypeInventoryIssuance, issuance.ID, document.ActionApprove)
		_, err := f.orchestrator.Perform(ctx, workflow.PerformRequest{
			Type:       document.TypeInventoryIssuance,
			DocumentID: issuance.ID,
			Action:     document.ActionIssue,
		})
		return err
	}

	require.NoError(t, issue(20))
	require.NoError(t, issue(15))

	issued, err := supplies.IssuedQuantity(ctx, registered[0].ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(35), issued)
	assert.Equal(t, int64(65), registered[0].Available(issued))

	// Only 65 remain; issuing 66 fails and rolls back
	err = issue(66)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CASCADE_FAILURE", domainErr.Code)
	assert.Contains(t, domainErr.Message, "65 available")

	require.NoError(t, issue(65))
}

func TestPerformBusyDocumentReturnsConcurrentModification(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})

	acquired, release, err := f.locker.TryAcquire(context.Background(), pr.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	defer release()

	_, err = f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypePurchaseRequest,
		DocumentID: pr.ID,
		Action:     document.ActionSubmit,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
}

func TestPerformReplacesItemsWithTransition(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
		Items:  []workflow.ItemPayload{{LineKey: "a", Quantity: 1, UnitCost: "10.00"}},
	})

	dto, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypePurchaseRequest,
		DocumentID: pr.ID,
		Action:     document.ActionSubmit,
		Items: []workflow.ItemPayload{
			{LineKey: "a", Quantity: 2, UnitCost: "10.00"},
			{LineKey: "b", Quantity: 1, UnitCost: "5.50"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, document.StatusPending, dto.Status)
	assert.Equal(t, "25.50", dto.TotalAmount)
	assert.Len(t, dto.Items, 2)
}

func TestAuditTrailRecordsTransitions(t *testing.T) {
	f := newFixture(t)
	actor := uuid.New()
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})

	_, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypePurchaseRequest,
		DocumentID: pr.ID,
		Action:     document.ActionSubmit,
		ActorID:    &actor,
	})
	require.NoError(t, err)
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionApproveCashAvailability)

	trail, err := f.orchestrator.AuditTrail(context.Background(), pr.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, document.ActionSubmit, trail[0].Action)
	assert.Equal(t, document.StatusDraft, trail[0].FromStatus)
	assert.Equal(t, document.StatusPending, trail[0].ToStatus)
	assert.Equal(t, &actor, trail[0].ActorID)
	assert.Nil(t, trail[1].ActorID)
}

func TestCreateDraftValidatesSource(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})

	// PR is still draft; an abstract cannot derive from it yet
	_, err := f.orchestrator.CreateDraft(context.Background(), workflow.CreateDocumentRequest{
		Type:     document.TypeAbstractOfQuotation,
		Period:   "2026-06",
		SourceID: &pr.ID,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ILLEGAL_TRANSITION", domainErr.Code)
}

func TestDeleteDraftOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})

	require.NoError(t, f.orchestrator.Delete(ctx, document.TypePurchaseRequest, pr.ID))
	_, err := f.orchestrator.Get(ctx, document.TypePurchaseRequest, pr.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	submitted := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})
	f.perform(t, document.TypePurchaseRequest, submitted.ID, document.ActionSubmit)
	assert.Error(t, f.orchestrator.Delete(ctx, document.TypePurchaseRequest, submitted.ID))
}

func TestPartialAwardKeepsRequestOpenForRecanvass(t *testing.T) {
	f := newFixture(t)
	supplierX := uuid.New()
	pr := f.walkToForAbstract(t, []workflow.ItemPayload{
		{LineKey: "a", Quantity: 1, UnitCost: "10.00"},
		{LineKey: "b", Quantity: 1, UnitCost: "20.00"},
	})
	aoq := f.create(t, workflow.CreateDocumentRequest{
		Type:     document.TypeAbstractOfQuotation,
		Period:   "2026-06",
		SourceID: &pr.ID,
		Items: []workflow.ItemPayload{
			{LineKey: "a", Quantity: 1, UnitCost: "10.00", SupplierID: &supplierX},
			{LineKey: "b", Quantity: 1, UnitCost: "20.00"},
		},
	})
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionSubmit)
	f.perform(t, document.TypeAbstractOfQuotation, aoq.ID, document.ActionApprove)

	_, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
		Type:       document.TypeAbstractOfQuotation,
		DocumentID: aoq.ID,
		Action:     document.ActionAward,
		Extent:     document.ExtentPartial,
	})
	require.NoError(t, err)

	// Only the awarded subset became a purchase order
	orders, _, err := f.orchestrator.List(context.Background(), document.TypePurchaseOrder, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "a", orders[0].Items[0].LineKey)

	// The request sits in partially_awarded and can go back to canvassing
	request, err := f.orchestrator.Get(context.Background(), document.TypePurchaseRequest, pr.ID)
	require.NoError(t, err)
	require.Equal(t, document.StatusPartiallyAwarded, request.Status)
	f.perform(t, document.TypePurchaseRequest, pr.ID, document.ActionRecanvass)
}

func TestPerformSerializesConcurrentActions(t *testing.T) {
	f := newFixture(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory SQLite fixture consistent
	// across goroutines.
	sqlDB.SetMaxOpenConns(1)

	pr := f.create(t, workflow.CreateDocumentRequest{
		Type:   document.TypePurchaseRequest,
		Period: "2026-06",
	})

	results := make(chan error, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.orchestrator.Perform(context.Background(), workflow.PerformRequest{
				Type:       document.TypePurchaseRequest,
				DocumentID: pr.ID,
				Action:     document.ActionSubmit,
			})
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	succeeded := 0
	var failed []error
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			failed = append(failed, err)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one submit may land")
	require.Len(t, failed, 1)

	// The loser either found the document locked or arrived after the
	// transition and hit the already-moved status.
	var domainErr *shared.DomainError
	require.ErrorAs(t, failed[0], &domainErr)
	assert.Contains(t, []string{"CONCURRENT_MODIFICATION", "ILLEGAL_TRANSITION"}, domainErr.Code)

	dto, err := f.orchestrator.Get(context.Background(), document.TypePurchaseRequest, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusPending, dto.Status)

	trail, err := f.orchestrator.AuditTrail(context.Background(), pr.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1, "only the winning submit is audited")
}

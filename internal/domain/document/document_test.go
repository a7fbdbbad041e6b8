package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func newDraft(t *testing.T, docType Type) *Document {
	t.Helper()
	doc, err := New(docType, "2026-06-0001", "2026-06")
	require.NoError(t, err)
	return doc
}

func TestNew(t *testing.T) {
	t.Run("draft with seeded history", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		assert.Equal(t, StatusDraft, doc.Status)
		assert.True(t, doc.History.Has(StatusDraft))
		assert.True(t, doc.TotalAmount.IsZero())
		assert.Len(t, doc.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCreated, doc.GetDomainEvents()[0].EventType())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(Type("memo"), "2026-06-0001", "2026-06")
		assert.Error(t, err)
	})

	t.Run("empty number", func(t *testing.T) {
		_, err := New(TypePurchaseRequest, "", "2026-06")
		assert.Error(t, err)
	})
}

func TestReplaceItems(t *testing.T) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	t.Run("create update delete by line key", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		require.NoError(t, doc.ReplaceItems([]ItemInput{
			{LineKey: "a", Description: "Bond paper", Unit: "ream", Quantity: 10, UnitCost: price("245.50")},
			{LineKey: "b", Description: "Ballpen", Unit: "piece", Quantity: 100, UnitCost: price("12.75")},
		}))
		require.Equal(t, 2, doc.ItemCount())
		keptID := doc.ItemByKey("a").ID

		require.NoError(t, doc.ReplaceItems([]ItemInput{
			{LineKey: "a", Description: "Bond paper A4", Unit: "ream", Quantity: 12, UnitCost: price("245.50")},
			{LineKey: "c", Description: "Stapler", Unit: "piece", Quantity: 5, UnitCost: price("180.00")},
		}))
		require.Equal(t, 2, doc.ItemCount())
		assert.Nil(t, doc.ItemByKey("b"), "absent line key must be deleted")
		assert.Equal(t, keptID, doc.ItemByKey("a").ID, "matching line key updates in place")
		assert.Equal(t, "Bond paper A4", doc.ItemByKey("a").Description)
		assert.Equal(t, int64(12), doc.ItemByKey("a").Quantity)
	})

	t.Run("per-line totals sum into the document total", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		// Unit costs are capped at 2 decimals, so with integer
		// quantities each line total is exact; this pins the
		// line-total and sum shape rather than a rounding edge.
		require.NoError(t, doc.ReplaceItems([]ItemInput{
			{LineKey: "a", Quantity: 3, UnitCost: price("10.33")},
			{LineKey: "b", Quantity: 7, UnitCost: price("99.99")},
		}))
		assert.True(t, doc.ItemByKey("a").TotalCost.Equal(price("30.99")))
		assert.True(t, doc.ItemByKey("b").TotalCost.Equal(price("699.93")))
		assert.True(t, doc.TotalAmount.Equal(price("730.92")))
	})

	t.Run("duplicate line key rejected", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		err := doc.ReplaceItems([]ItemInput{
			{LineKey: "a", Quantity: 1, UnitCost: price("1.00")},
			{LineKey: "a", Quantity: 2, UnitCost: price("2.00")},
		})
		assert.Error(t, err)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		err := doc.ReplaceItems([]ItemInput{{LineKey: "a", Quantity: 0, UnitCost: price("1.00")}})
		assertDomainCode(t, err, "INVALID_QUANTITY")
	})

	t.Run("excess cost precision", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		err := doc.ReplaceItems([]ItemInput{{LineKey: "a", Quantity: 1, UnitCost: price("1.005")}})
		assertDomainCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("terminal document refuses changes", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		_, err := doc.Apply(ActionCancel, ExtentNone, nil)
		require.NoError(t, err)
		err = doc.ReplaceItems([]ItemInput{{LineKey: "a", Quantity: 1, UnitCost: price("1.00")}})
		assertDomainCode(t, err, "ILLEGAL_TRANSITION")
	})

	t.Run("empty input clears the ledger", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		require.NoError(t, doc.ReplaceItems([]ItemInput{{LineKey: "a", Quantity: 2, UnitCost: price("5.00")}}))
		require.NoError(t, doc.ReplaceItems(nil))
		assert.Equal(t, 0, doc.ItemCount())
		assert.True(t, doc.TotalAmount.IsZero())
	})
}

func TestApply(t *testing.T) {
	t.Run("records first-entry history and raises event", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		doc.ClearDomainEvents()

		_, err := doc.Apply(ActionSubmit, ExtentNone, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, doc.Status)
		assert.True(t, doc.History.Has(StatusPending))

		events := doc.GetDomainEvents()
		require.Len(t, events, 1)
		transitioned, ok := events[0].(*TransitionedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusDraft, transitioned.FromStatus)
		assert.Equal(t, StatusPending, transitioned.ToStatus)
		assert.Equal(t, ActionSubmit, transitioned.Action)
	})

	t.Run("illegal action leaves document untouched", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		version := doc.Version
		_, err := doc.Apply(ActionApprove, ExtentNone, nil)
		require.Error(t, err)
		assert.Equal(t, StatusDraft, doc.Status)
		assert.Equal(t, version, doc.Version)
	})

	t.Run("re-entry preserves first timestamp", func(t *testing.T) {
		doc := newDraft(t, TypePurchaseRequest)
		walk := []struct {
			action Action
			extent Extent
		}{
			{ActionSubmit, ExtentNone},
			{ActionApproveCashAvailability, ExtentNone},
			{ActionApprove, ExtentNone},
			{ActionIssueRfq, ExtentNone},
			{ActionRecanvass, ExtentNone},
			{ActionCompleteCanvassing, ExtentNone},
			{ActionAward, ExtentPartial},
		}
		for _, step := range walk {
			_, err := doc.Apply(step.action, step.extent, nil)
			require.NoError(t, err)
		}
		first, ok := doc.History.At(StatusForRecanvassing)
		require.True(t, ok)

		// partially_awarded -> for_recanvassing again
		_, err := doc.Apply(ActionRecanvass, ExtentNone, nil)
		require.NoError(t, err)
		again, _ := doc.History.At(StatusForRecanvassing)
		assert.True(t, first.Equal(again))
	})

	t.Run("effects surfaced to caller", func(t *testing.T) {
		doc := newDraft(t, TypeAbstractOfQuotation)
		_, err := doc.Apply(ActionSubmit, ExtentNone, nil)
		require.NoError(t, err)
		_, err = doc.Apply(ActionApprove, ExtentNone, nil)
		require.NoError(t, err)

		effects, err := doc.Apply(ActionAward, ExtentPartial, nil)
		require.NoError(t, err)
		require.Len(t, effects, 2)
		assert.Equal(t, EffectSpawnPurchaseOrders, effects[0].Kind)
		assert.Equal(t, ExtentPartial, effects[0].Extent)
		assert.Equal(t, EffectAdvanceRequest, effects[1].Kind)
	})
}

func TestDocumentGuards(t *testing.T) {
	doc := newDraft(t, TypePurchaseRequest)
	assert.True(t, doc.CanDelete())
	assert.True(t, doc.CanModifyItems())
	assert.False(t, doc.IsTerminal())

	_, err := doc.Apply(ActionSubmit, ExtentNone, nil)
	require.NoError(t, err)
	assert.False(t, doc.CanDelete())
	assert.True(t, doc.CanModifyItems())

	_, err = doc.Apply(ActionCancel, ExtentNone, nil)
	require.NoError(t, err)
	assert.True(t, doc.IsTerminal())
	assert.False(t, doc.CanModifyItems())
}

func TestSetSource(t *testing.T) {
	doc := newDraft(t, TypePurchaseOrder)
	source := uuid.New()
	require.NoError(t, doc.SetSource(source))
	assert.Error(t, doc.SetSource(uuid.New()), "source reference is write-once")
	assert.Equal(t, source, *doc.SourceID)
}

func TestItemsBySupplier(t *testing.T) {
	alpha, beta := uuid.New(), uuid.New()
	doc := newDraft(t, TypePurchaseRequest)
	require.NoError(t, doc.ReplaceItems([]ItemInput{
		{LineKey: "a", SupplierID: &alpha, Quantity: 1, UnitCost: decimal.NewFromInt(10)},
		{LineKey: "b", SupplierID: &beta, Quantity: 2, UnitCost: decimal.NewFromInt(20)},
		{LineKey: "c", SupplierID: &alpha, Quantity: 3, UnitCost: decimal.NewFromInt(30)},
		{LineKey: "d", Quantity: 4, UnitCost: decimal.NewFromInt(40)},
	}))
	groups := doc.ItemsBySupplier()
	require.Len(t, groups, 2)
	assert.Len(t, groups[alpha], 2)
	assert.Len(t, groups[beta], 1)
	assert.Len(t, doc.AwardedItems(), 3)
}

func TestStatusHistoryRoundTrip(t *testing.T) {
	h := NewStatusHistory(StatusDraft, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	h.Record(StatusPending, time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC))

	raw, err := h.Value()
	require.NoError(t, err)

	var decoded StatusHistory
	require.NoError(t, decoded.Scan(raw))
	assert.Len(t, decoded, 2)
	ts, ok := decoded.At(StatusPending)
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC)))
}

func TestNewAuditEntryFromEvent(t *testing.T) {
	doc := newDraft(t, TypePurchaseRequest)
	doc.ClearDomainEvents()
	_, err := doc.Apply(ActionSubmit, ExtentNone, nil)
	require.NoError(t, err)

	events := doc.GetDomainEvents()
	require.Len(t, events, 1)
	transitioned, ok := events[0].(*TransitionedEvent)
	require.True(t, ok)

	entry := NewAuditEntryFromEvent(transitioned)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, doc.ID, entry.DocumentID)
	assert.Equal(t, TypePurchaseRequest, entry.DocumentType)
	assert.Equal(t, doc.Number, entry.Number)
	assert.Equal(t, ActionSubmit, entry.Action)
	assert.Equal(t, StatusDraft, entry.FromStatus)
	assert.Equal(t, StatusPending, entry.ToStatus)
	assert.Nil(t, entry.ActorID)
	assert.Equal(t, transitioned.OccurredAt(), entry.At)
}

package workflow_test

import (
	"testing"

	"github.com/procure/backend/internal/application/workflow"
	"github.com/procure/backend/internal/domain/document"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDocumentFormatsAmounts(t *testing.T) {
	doc, err := document.New(document.TypePurchaseRequest, "2026-06-0001", "2026-06")
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceItems([]document.ItemInput{
		{LineKey: "a", Description: "Bond paper", Unit: "ream", Quantity: 3, UnitCost: decimal.RequireFromString("10.5")},
		{LineKey: "b", Description: "Toner", Unit: "piece", Quantity: 7, UnitCost: decimal.RequireFromString("99.99")},
	}))

	dto := workflow.FromDocument(doc)
	require.Len(t, dto.Items, 2)

	byKey := make(map[string]workflow.ItemDTO, len(dto.Items))
	for _, item := range dto.Items {
		byKey[item.LineKey] = item
	}

	// Amounts render through the money value object at fixed two
	// decimals, so a 1-decimal unit cost still comes out padded.
	assert.Equal(t, "10.50", byKey["a"].UnitCost)
	assert.Equal(t, "31.50", byKey["a"].TotalCost)
	assert.Equal(t, "99.99", byKey["b"].UnitCost)
	assert.Equal(t, "699.93", byKey["b"].TotalCost)
	assert.Equal(t, "731.43", dto.TotalAmount)
}

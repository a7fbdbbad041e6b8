package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procure/backend/internal/application/workflow"
	"github.com/procure/backend/internal/interfaces/http/dto"
)

// SupplyHandler exposes the inventory supply registry
type SupplyHandler struct {
	BaseHandler
	orchestrator *workflow.Orchestrator
}

// NewSupplyHandler creates a supply handler
func NewSupplyHandler(orchestrator *workflow.Orchestrator) *SupplyHandler {
	return &SupplyHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers supply routes on the given group
func (h *SupplyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	supplies := rg.Group("/supplies")
	{
		supplies.GET("", h.List)
		supplies.GET("/:id", h.Get)
	}
}

// List handles GET /supplies
func (h *SupplyHandler) List(c *gin.Context) {
	supplies, err := h.orchestrator.ListSupplies(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplies)
}

// Get handles GET /supplies/:id
func (h *SupplyHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid supply id")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "invalid supply id")
		return
	}
	supply, err := h.orchestrator.GetSupply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supply)
}

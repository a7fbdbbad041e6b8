package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procure/backend/internal/application/workflow"
	"github.com/procure/backend/internal/domain/document"
	"github.com/procure/backend/internal/domain/shared"
	"github.com/procure/backend/internal/interfaces/http/dto"
)

// DocumentHandler exposes the procurement workflow over HTTP. Routes
// are keyed by document type so one handler serves the whole document
// family.
type DocumentHandler struct {
	BaseHandler
	orchestrator *workflow.Orchestrator
}

// NewDocumentHandler creates a document handler
func NewDocumentHandler(orchestrator *workflow.Orchestrator) *DocumentHandler {
	return &DocumentHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents/:type")
	{
		docs.POST("", h.Create)
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/actions", h.Perform)
		docs.GET("/:id/audit", h.Audit)
	}
}

// docType resolves and validates the :type path parameter
func (h *DocumentHandler) docType(c *gin.Context) (document.Type, bool) {
	t := document.Type(c.Param("type"))
	if !t.IsValid() {
		h.Error(c, 400, "UNSUPPORTED_TYPE", fmt.Sprintf("unknown document type %q", c.Param("type")))
		return "", false
	}
	return t, true
}

func (h *DocumentHandler) docID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid document id")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /documents/:type
func (h *DocumentHandler) Create(c *gin.Context) {
	t, ok := h.docType(c)
	if !ok {
		return
	}
	var req workflow.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Type = t
	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "invalid actor id")
		return
	}
	req.ActorID = actor

	doc, err := h.orchestrator.CreateDraft(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Get handles GET /documents/:type/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	t, ok := h.docType(c)
	if !ok {
		return
	}
	id, ok := h.docID(c)
	if !ok {
		return
	}
	doc, err := h.orchestrator.Get(c.Request.Context(), t, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List handles GET /documents/:type. A number query parameter turns
// the call into a lookup by document number.
func (h *DocumentHandler) List(c *gin.Context) {
	t, ok := h.docType(c)
	if !ok {
		return
	}
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Number != "" {
		doc, err := h.orchestrator.GetByNumber(c.Request.Context(), t, req.Number)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, doc)
		return
	}

	filter := toFilter(req)
	docs, total, err := h.orchestrator.List(c.Request.Context(), t, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// Perform handles POST /documents/:type/:id/actions
func (h *DocumentHandler) Perform(c *gin.Context) {
	t, ok := h.docType(c)
	if !ok {
		return
	}
	id, ok := h.docID(c)
	if !ok {
		return
	}
	var req workflow.PerformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Type = t
	req.DocumentID = id
	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "invalid actor id")
		return
	}
	req.ActorID = actor

	doc, err := h.orchestrator.Perform(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete handles DELETE /documents/:type/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	t, ok := h.docType(c)
	if !ok {
		return
	}
	id, ok := h.docID(c)
	if !ok {
		return
	}
	if err := h.orchestrator.Delete(c.Request.Context(), t, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Audit handles GET /documents/:type/:id/audit
func (h *DocumentHandler) Audit(c *gin.Context) {
	if _, ok := h.docType(c); !ok {
		return
	}
	id, ok := h.docID(c)
	if !ok {
		return
	}
	entries, err := h.orchestrator.AuditTrail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

func toFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Period != "" {
		filter.Filters["period"] = req.Period
	}
	return filter
}

package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/application/service"
	"github.com/garyjia/procure-indent/internal/domain/entity"
	"github.com/garyjia/procure-indent/internal/domain/role"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	indentService       service.IndentService
	vendorService       service.VendorService
	notificationService service.NotificationService
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	indentService service.IndentService,
	vendorService service.VendorService,
	notificationService service.NotificationService,
	logger Logger,
) *Handlers {
	return &Handlers{
		indentService:       indentService,
		vendorService:       vendorService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ItemRequest is one requested line item
type ItemRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Unit          string  `json:"unit"`
	EstimatedCost float64 `json:"estimated_cost" binding:"gte=0"`
	Justification string  `json:"justification"`
}

// SubmitIndentRequest is the POST /api/indents payload
type SubmitIndentRequest struct {
	RequesterID string        `json:"requester_id" binding:"required"`
	Department  string        `json:"department" binding:"required"`
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	BudgetCode  string        `json:"budget_code"`
	Priority    string        `json:"priority" binding:"required"`
	Items       []ItemRequest `json:"items" binding:"required,min=1"`
}

// SubmitApprovalRequest is the POST /api/indents/:id/approvals payload
type SubmitApprovalRequest struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorRole string `json:"actor_role" binding:"required"`
	Decision  string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Remarks   string `json:"remarks"`
}

// IssuePORequest is the POST /api/indents/:id/purchase-order payload
type IssuePORequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
}

// StageResponse represents an approval stage in API responses
type StageResponse struct {
	Role      string   `json:"role"`
	Threshold *float64 `json:"threshold,omitempty"` // omitted when unbounded
	Order     int      `json:"order"`
}

func toStageResponse(stage workflow.ApprovalStage) StageResponse {
	resp := StageResponse{
		Role:  stage.Role.String(),
		Order: stage.Order,
	}
	if !stage.Unbounded() {
		threshold := stage.Threshold
		resp.Threshold = &threshold
	}
	return resp
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SubmitIndent handles POST /api/indents
func (h *Handlers) SubmitIndent(c *gin.Context) {
	var req SubmitIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	items := make([]service.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.ItemInput{
			Name:          item.Name,
			Description:   item.Description,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			EstimatedCost: item.EstimatedCost,
			Justification: item.Justification,
		})
	}

	id, err := h.indentService.SubmitIndent(c.Request.Context(), service.SubmitIndentRequest{
		RequesterID: req.RequesterID,
		Department:  req.Department,
		Title:       req.Title,
		Description: req.Description,
		BudgetCode:  req.BudgetCode,
		Priority:    req.Priority,
		Items:       items,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"indent_id": id}})
}

// ListIndents handles GET /api/indents
func (h *Handlers) ListIndents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	indents, err := h.indentService.ListIndents(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: indents})
}

// GetIndent handles GET /api/indents/:id
func (h *Handlers) GetIndent(c *gin.Context) {
	indent, err := h.indentService.GetIndent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"indent":            indent,
		"permitted_actions": h.indentService.PermittedActions(indent.Status),
	}})
}

// SubmitApproval handles POST /api/indents/:id/approvals
func (h *Handlers) SubmitApproval(c *gin.Context) {
	var req SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	actorRole, err := role.Parse(req.ActorRole)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	newStatus, err := h.indentService.SubmitApproval(
		c.Request.Context(), c.Param("id"), req.ActorID, actorRole, req.Decision, req.Remarks)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": newStatus}})
}

// IssuePurchaseOrder handles POST /api/indents/:id/purchase-order
func (h *Handlers) IssuePurchaseOrder(c *gin.Context) {
	var req IssuePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	poID, err := h.indentService.IssuePurchaseOrder(c.Request.Context(), c.Param("id"), req.VendorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"po_id": poID}})
}

// CompleteIndent handles POST /api/indents/:id/complete
func (h *Handlers) CompleteIndent(c *gin.Context) {
	if err := h.indentService.CompleteIndent(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": entity.StatusCompleted}})
}

// NextApprovalStage handles GET /api/stages/next
func (h *Handlers) NextApprovalStage(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid amount"})
		return
	}
	currentOrder, _ := strconv.Atoi(c.DefaultQuery("current_order", "0"))

	stage, ok := h.indentService.NextApprovalStage(amount, currentOrder)
	if !ok {
		c.JSON(http.StatusOK, Response{Success: true, Data: nil})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toStageResponse(stage)})
}

// CreateVendor handles POST /api/vendors
func (h *Handlers) CreateVendor(c *gin.Context) {
	var vendor entity.Vendor
	if err := c.ShouldBindJSON(&vendor); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	id, err := h.vendorService.CreateVendor(c.Request.Context(), &vendor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"vendor_id": id}})
}

// ListVendors handles GET /api/vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: vendors})
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// respondError maps domain error kinds to HTTP statuses
func (h *Handlers) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, port.ErrConflict):
		status = http.StatusConflict
	default:
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"eventvenue/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetBalance handles GET /api/v1/ledger/accounts/:id
func (c *Controller) GetBalance(ctx *gin.Context) {
	accountID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	account, err := c.service.GetAccount(ctx.Request.Context(), accountID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": account})
}

// GetHistory handles GET /api/v1/ledger/accounts/:id/history
func (c *Controller) GetHistory(ctx *gin.Context) {
	accountID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	entries, err := c.service.GetHistory(ctx.Request.Context(), accountID, limit, offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": entries})
}

// SubmitCreditRequest handles POST /api/v1/ledger/credit-requests
func (c *Controller) SubmitCreditRequest(ctx *gin.Context) {
	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreditRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	created, err := c.service.SubmitCreditRequest(ctx.Request.Context(), accountID, req.Points, req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Credit request submitted", "data": created})
}

// ListPendingCreditRequests handles GET /api/v1/ledger/credit-requests/pending
func (c *Controller) ListPendingCreditRequests(ctx *gin.Context) {
	reqs, err := c.service.ListPendingCreditRequests(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": reqs})
}

// ApproveCreditRequest handles POST /api/v1/ledger/credit-requests/:id/approve
func (c *Controller) ApproveCreditRequest(ctx *gin.Context) {
	c.resolveCreditRequest(ctx, true)
}

// RejectCreditRequest handles POST /api/v1/ledger/credit-requests/:id/reject
func (c *Controller) RejectCreditRequest(ctx *gin.Context) {
	c.resolveCreditRequest(ctx, false)
}

func (c *Controller) resolveCreditRequest(ctx *gin.Context, approve bool) {
	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}
	adminID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req ResolveRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var resolved *CreditRequest
	if approve {
		resolved, err = c.service.ApproveCreditRequest(ctx.Request.Context(), requestID, adminID, req.Notes)
	} else {
		resolved, err = c.service.RejectCreditRequest(ctx.Request.Context(), requestID, adminID, req.Notes)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": resolved})
}

// SubmitWithdrawalRequest handles POST /api/v1/ledger/withdrawal-requests
func (c *Controller) SubmitWithdrawalRequest(ctx *gin.Context) {
	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req WithdrawalRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	created, err := c.service.SubmitWithdrawalRequest(ctx.Request.Context(), accountID, req.Points)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Withdrawal request submitted", "data": created})
}

// ApproveWithdrawalRequest handles POST /api/v1/ledger/withdrawal-requests/:id/approve
func (c *Controller) ApproveWithdrawalRequest(ctx *gin.Context) {
	c.resolveWithdrawalRequest(ctx, true)
}

// RejectWithdrawalRequest handles POST /api/v1/ledger/withdrawal-requests/:id/reject
func (c *Controller) RejectWithdrawalRequest(ctx *gin.Context) {
	c.resolveWithdrawalRequest(ctx, false)
}

func (c *Controller) resolveWithdrawalRequest(ctx *gin.Context, approve bool) {
	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}
	adminID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req ResolveRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var resolved *WithdrawalRequest
	if approve {
		resolved, err = c.service.ApproveWithdrawalRequest(ctx.Request.Context(), requestID, adminID, req.Notes)
	} else {
		resolved, err = c.service.RejectWithdrawalRequest(ctx.Request.Context(), requestID, adminID, req.Notes)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": resolved})
}

// accountIDFromContext reads the authenticated account id set by the JWT
// middleware. Writes the error response itself when missing.
func accountIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	idValue, exists := ctx.Get("account_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	idStr, ok := idValue.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid account ID format"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInsufficientBalance):
		ctx.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

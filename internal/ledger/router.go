package ledger

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupLedgerRoutes configures all ledger-related routes
func SetupLedgerRoutes(rg *gin.RouterGroup, controller *Controller) {
	ledger := rg.Group("/ledger")
	ledger.Use(middleware.JWTAuth())
	{
		ledger.GET("/accounts/:id", controller.GetBalance)             // GET /api/v1/ledger/accounts/:id
		ledger.GET("/accounts/:id/history", controller.GetHistory)     // GET /api/v1/ledger/accounts/:id/history
		ledger.POST("/credit-requests", controller.SubmitCreditRequest)
		ledger.POST("/withdrawal-requests", controller.SubmitWithdrawalRequest)
	}

	admin := rg.Group("/ledger")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/credit-requests/pending", controller.ListPendingCreditRequests)
		admin.POST("/credit-requests/:id/approve", controller.ApproveCreditRequest)
		admin.POST("/credit-requests/:id/reject", controller.RejectCreditRequest)
		admin.POST("/withdrawal-requests/:id/approve", controller.ApproveWithdrawalRequest)
		admin.POST("/withdrawal-requests/:id/reject", controller.RejectWithdrawalRequest)
	}
}

package ledger

// CreditRequestInput represents a request body for submitting a credit request
type CreditRequestInput struct {
	Points int64  `json:"points" binding:"required,min=1"`
	Reason string `json:"reason" binding:"required,min=5,max=500"`
}

// WithdrawalRequestInput represents a request body for submitting a withdrawal request
type WithdrawalRequestInput struct {
	Points int64 `json:"points" binding:"required,min=1"`
}

// ResolveRequestInput represents an admin approving or rejecting a request
type ResolveRequestInput struct {
	Notes string `json:"notes" binding:"max=500"`
}

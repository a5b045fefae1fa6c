package ledger

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType identifies who an account belongs to.
type OwnerType string

const (
	OwnerUser   OwnerType = "USER"
	OwnerVendor OwnerType = "VENDOR"
)

// Account holds the points balance for a user or vendor. The balance is
// mutated only through ledger operations; it must always equal the sum of
// the account's entry deltas.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerType OwnerType `gorm:"type:varchar(10);not null" json:"owner_type"`
	OwnerID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"owner_id"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one immutable balance change. Entries are append-only; they are
// never updated or deleted and form the audit trail for every balance.
type Entry struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID        uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`
	Delta            int64     `gorm:"not null" json:"delta"`
	Reason           string    `gorm:"type:varchar(255);not null" json:"reason"`
	ReferenceID      *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	ResultingBalance int64     `gorm:"not null" json:"resulting_balance"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RequestStatus is the lifecycle of a credit or withdrawal request.
// PENDING is the only state that permits a transition; APPROVED and
// REJECTED are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// CreditRequest is a user-initiated request to have points added to their
// account. Approval is the only path that mutates the ledger.
type CreditRequest struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"account_id"`
	Points     int64         `gorm:"not null;check:points > 0" json:"points"`
	Reason     string        `gorm:"type:text;not null" json:"reason"`
	Status     RequestStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	AdminID    *uuid.UUID    `gorm:"type:uuid" json:"admin_id,omitempty"`
	AdminNotes string        `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// WithdrawalRequest is a request to convert points back out of the
// platform. The points are debited only on approval.
type WithdrawalRequest struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"account_id"`
	Points     int64         `gorm:"not null;check:points > 0" json:"points"`
	Status     RequestStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	AdminID    *uuid.UUID    `gorm:"type:uuid" json:"admin_id,omitempty"`
	AdminNotes string        `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName sets the table name for Account
func (Account) TableName() string {
	return "point_accounts"
}

// TableName sets the table name for Entry
func (Entry) TableName() string {
	return "points_history"
}

// TableName sets the table name for CreditRequest
func (CreditRequest) TableName() string {
	return "credit_requests"
}

// TableName sets the table name for WithdrawalRequest
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// Well-known entry reasons.
const (
	ReasonBookingPayment = "Booking payment"
	ReasonPlatformFee    = "Platform fee"
	ReasonVendorEarning  = "Booking earning"
	ReasonRefund         = "Booking refund"
	ReasonRefundReversal = "Booking refund reversal"
	ReasonCreditApproved   = "Credit request approved"
	ReasonCreditReversal   = "Credit approval reversal"
	ReasonWithdrawal       = "Withdrawal approved"
	ReasonWithdrawalReturn = "Withdrawal approval reversal"
)

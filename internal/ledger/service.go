package ledger

import (
	"context"
	"fmt"
	"time"

	"eventvenue/internal/shared/apperr"
	"eventvenue/pkg/lockring"
	"eventvenue/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for the points ledger.
type Service interface {
	// Account operations
	CreateAccount(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (*Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*Account, error)
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error)
	GetHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error)

	// Balance mutations. Every mutation appends exactly one entry per
	// touched account inside that account's critical section.
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*Entry, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*Entry, error)
	// DebitUpTo debits min(amount, balance) and reports the points actually
	// taken. Used for vendor-side refund reversals, which are floored at a
	// zero balance rather than failing.
	DebitUpTo(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (int64, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount int64, reason string, ref *uuid.UUID) error

	// Credit / withdrawal request workflows
	SubmitCreditRequest(ctx context.Context, accountID uuid.UUID, points int64, reason string) (*CreditRequest, error)
	ApproveCreditRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CreditRequest, error)
	RejectCreditRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CreditRequest, error)
	ListPendingCreditRequests(ctx context.Context) ([]CreditRequest, error)

	SubmitWithdrawalRequest(ctx context.Context, accountID uuid.UUID, points int64) (*WithdrawalRequest, error)
	ApproveWithdrawalRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*WithdrawalRequest, error)
	RejectWithdrawalRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*WithdrawalRequest, error)
}

type service struct {
	repo  Repository
	locks *lockring.Ring
}

// NewService creates a new ledger service instance.
func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		locks: lockring.New(),
	}
}

// RefundPoints computes the points returned for a given refund percentage,
// rounded half-up to the nearest whole point.
func RefundPoints(pointsSpent int64, percentage int) int64 {
	if pointsSpent <= 0 || percentage <= 0 {
		return 0
	}
	return (pointsSpent*int64(percentage) + 50) / 100
}

func (s *service) CreateAccount(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) (*Account, error) {
	account := &Account{
		ID:        uuid.New(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Balance:   0,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *service) GetAccount(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, accountID)
}

func (s *service) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error) {
	return s.repo.GetAccountByOwner(ctx, ownerID)
}

func (s *service) GetHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error) {
	return s.repo.GetEntries(ctx, accountID, limit, offset)
}

// Credit adds points to an account. It never fails on balance bounds.
func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	s.locks.Lock(accountID.String())
	defer s.locks.Unlock(accountID.String())

	return s.applyDelta(ctx, accountID, amount, reason, ref)
}

// Debit removes points from an account. The balance check happens inside
// the account's critical section so a concurrent debit cannot slip between
// the read and the write.
func (s *service) Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*Entry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	s.locks.Lock(accountID.String())
	defer s.locks.Unlock(accountID.String())

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Balance < amount {
		return nil, fmt.Errorf("account %s has %d points, need %d: %w",
			accountID, account.Balance, amount, apperr.ErrInsufficientBalance)
	}

	return s.applyDeltaLocked(ctx, account, -amount, reason, ref)
}

func (s *service) DebitUpTo(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	s.locks.Lock(accountID.String())
	defer s.locks.Unlock(accountID.String())

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}

	debit := amount
	if account.Balance < debit {
		debit = account.Balance
	}
	if debit == 0 {
		return 0, nil
	}

	if _, err := s.applyDeltaLocked(ctx, account, -debit, reason, ref); err != nil {
		return 0, err
	}
	return debit, nil
}

// Transfer moves points between two accounts as one unit. Both account
// locks are taken up front in sorted id order to avoid deadlock with a
// concurrent transfer in the opposite direction.
func (s *service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount int64, reason string, ref *uuid.UUID) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if fromID == toID {
		return fmt.Errorf("transfer to the same account: %w", apperr.ErrInvalidState)
	}

	unlock := s.locks.LockAll([]string{fromID.String(), toID.String()})
	defer unlock()

	from, err := s.repo.GetAccount(ctx, fromID)
	if err != nil {
		return err
	}
	to, err := s.repo.GetAccount(ctx, toID)
	if err != nil {
		return err
	}
	if from.Balance < amount {
		return fmt.Errorf("account %s has %d points, need %d: %w",
			fromID, from.Balance, amount, apperr.ErrInsufficientBalance)
	}

	now := time.Now()
	from.Balance -= amount
	to.Balance += amount
	entries := []*Entry{
		{ID: uuid.New(), AccountID: fromID, Delta: -amount, Reason: reason, ReferenceID: ref, ResultingBalance: from.Balance, CreatedAt: now},
		{ID: uuid.New(), AccountID: toID, Delta: amount, Reason: reason, ReferenceID: ref, ResultingBalance: to.Balance, CreatedAt: now},
	}
	if err := s.repo.ApplyEntries(ctx, []*Account{from, to}, entries); err != nil {
		return fmt.Errorf("failed to apply transfer: %w", err)
	}
	return nil
}

// applyDelta loads the account and applies the delta; the caller must hold
// the account lock.
func (s *service) applyDelta(ctx context.Context, accountID uuid.UUID, delta int64, reason string, ref *uuid.UUID) (*Entry, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.applyDeltaLocked(ctx, account, delta, reason, ref)
}

func (s *service) applyDeltaLocked(ctx context.Context, account *Account, delta int64, reason string, ref *uuid.UUID) (*Entry, error) {
	account.Balance += delta
	entry := &Entry{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Delta:            delta,
		Reason:           reason,
		ReferenceID:      ref,
		ResultingBalance: account.Balance,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.ApplyEntry(ctx, account, entry); err != nil {
		return nil, fmt.Errorf("failed to apply ledger entry: %w", err)
	}
	logger.GetDefault().LogLedgerMutation(ctx, account.ID.String(), delta, reason)
	return entry, nil
}

func (s *service) SubmitCreditRequest(ctx context.Context, accountID uuid.UUID, points int64, reason string) (*CreditRequest, error) {
	if points <= 0 {
		return nil, fmt.Errorf("requested points must be positive, got %d", points)
	}
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	req := &CreditRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		Points:    points,
		Reason:    reason,
		Status:    RequestPending,
	}
	if err := s.repo.CreateCreditRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create credit request: %w", err)
	}
	return req, nil
}

// ApproveCreditRequest resolves a pending request and credits the account.
// A request already in a terminal state cannot be resolved again.
func (s *service) ApproveCreditRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CreditRequest, error) {
	req, err := s.repo.GetCreditRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("credit request %s already %s: %w", requestID, req.Status, apperr.ErrInvalidState)
	}

	// Credit first, flip the status after. If the status update fails the
	// credit is reversed so the request stays PENDING and retryable.
	if _, err := s.Credit(ctx, req.AccountID, req.Points, ReasonCreditApproved, &req.ID); err != nil {
		return nil, err
	}

	req.Status = RequestApproved
	req.AdminID = &adminID
	req.AdminNotes = notes
	if err := s.repo.UpdateCreditRequest(ctx, req); err != nil {
		if _, derr := s.Debit(ctx, req.AccountID, req.Points, ReasonCreditReversal, &req.ID); derr != nil {
			return nil, fmt.Errorf("credit request %s update failed (%v) and reversal failed (%v): %w",
				requestID, err, derr, apperr.ErrInternalInconsistency)
		}
		return nil, fmt.Errorf("failed to update credit request: %w", err)
	}
	return req, nil
}

// RejectCreditRequest resolves a pending request without touching the ledger.
func (s *service) RejectCreditRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CreditRequest, error) {
	req, err := s.repo.GetCreditRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("credit request %s already %s: %w", requestID, req.Status, apperr.ErrInvalidState)
	}

	req.Status = RequestRejected
	req.AdminID = &adminID
	req.AdminNotes = notes
	if err := s.repo.UpdateCreditRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update credit request: %w", err)
	}
	return req, nil
}

func (s *service) ListPendingCreditRequests(ctx context.Context) ([]CreditRequest, error) {
	return s.repo.ListPendingCreditRequests(ctx)
}

func (s *service) SubmitWithdrawalRequest(ctx context.Context, accountID uuid.UUID, points int64) (*WithdrawalRequest, error) {
	if points <= 0 {
		return nil, fmt.Errorf("requested points must be positive, got %d", points)
	}
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Balance < points {
		return nil, fmt.Errorf("account %s has %d points, requested %d: %w",
			accountID, account.Balance, points, apperr.ErrInsufficientBalance)
	}

	req := &WithdrawalRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		Points:    points,
		Status:    RequestPending,
	}
	if err := s.repo.CreateWithdrawalRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return req, nil
}

// ApproveWithdrawalRequest debits the points. The balance is re-checked at
// approval time; the submit-time check is advisory only.
func (s *service) ApproveWithdrawalRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*WithdrawalRequest, error) {
	req, err := s.repo.GetWithdrawalRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("withdrawal request %s already %s: %w", requestID, req.Status, apperr.ErrInvalidState)
	}

	if _, err := s.Debit(ctx, req.AccountID, req.Points, ReasonWithdrawal, &req.ID); err != nil {
		return nil, err
	}

	req.Status = RequestApproved
	req.AdminID = &adminID
	req.AdminNotes = notes
	if err := s.repo.UpdateWithdrawalRequest(ctx, req); err != nil {
		// Return the points so a retried approval does not debit twice.
		if _, cerr := s.Credit(ctx, req.AccountID, req.Points, ReasonWithdrawalReturn, &req.ID); cerr != nil {
			return nil, fmt.Errorf("withdrawal request %s update failed (%v) and reversal failed (%v): %w",
				requestID, err, cerr, apperr.ErrInternalInconsistency)
		}
		return nil, fmt.Errorf("failed to update withdrawal request: %w", err)
	}
	return req, nil
}

func (s *service) RejectWithdrawalRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*WithdrawalRequest, error) {
	req, err := s.repo.GetWithdrawalRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("withdrawal request %s already %s: %w", requestID, req.Status, apperr.ErrInvalidState)
	}

	req.Status = RequestRejected
	req.AdminID = &adminID
	req.AdminNotes = notes
	if err := s.repo.UpdateWithdrawalRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal request: %w", err)
	}
	return req, nil
}

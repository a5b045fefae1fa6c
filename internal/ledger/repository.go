package ledger

import (
	"context"
	"errors"
	"fmt"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error)

	// ApplyEntry persists the updated balance and appends the entry as one
	// transaction so a crash can never separate the two.
	ApplyEntry(ctx context.Context, account *Account, entry *Entry) error

	// ApplyEntries persists several account/entry pairs atomically; used by
	// Transfer so both legs commit or neither does.
	ApplyEntries(ctx context.Context, accounts []*Account, entries []*Entry) error

	GetEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error)
	SumEntryDeltas(ctx context.Context, accountID uuid.UUID) (int64, error)

	// Credit / withdrawal requests
	CreateCreditRequest(ctx context.Context, req *CreditRequest) error
	GetCreditRequest(ctx context.Context, id uuid.UUID) (*CreditRequest, error)
	UpdateCreditRequest(ctx context.Context, req *CreditRequest) error
	ListPendingCreditRequests(ctx context.Context) ([]CreditRequest, error)

	CreateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error
	GetWithdrawalRequest(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)
	UpdateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAccount(ctx context.Context, account *Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account for owner %s: %w", ownerID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ApplyEntry(ctx context.Context, account *Account, entry *Entry) error {
	return r.ApplyEntries(ctx, []*Account{account}, []*Entry{entry})
}

func (r *repository) ApplyEntries(ctx context.Context, accounts []*Account, entries []*Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, account := range accounts {
			if err := tx.Model(&Account{}).
				Where("id = ?", account.ID).
				Update("balance", account.Balance).Error; err != nil {
				return err
			}
		}
		for _, entry := range entries {
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) GetEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *repository) SumEntryDeltas(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *repository) CreateCreditRequest(ctx context.Context, req *CreditRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetCreditRequest(ctx context.Context, id uuid.UUID) (*CreditRequest, error) {
	var req CreditRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("credit request %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateCreditRequest(ctx context.Context, req *CreditRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) ListPendingCreditRequests(ctx context.Context) ([]CreditRequest, error) {
	var reqs []CreditRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", RequestPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) CreateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetWithdrawalRequest(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	var req WithdrawalRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("withdrawal request %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
)

// mockRepository is an in-memory Repository for testing
type mockRepository struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*Account
	entries     []Entry
	creditReqs  map[uuid.UUID]*CreditRequest
	withdrawals map[uuid.UUID]*WithdrawalRequest

	// When set, the next matching update consumes the error and fails.
	creditUpdateErr     error
	withdrawalUpdateErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts:    make(map[uuid.UUID]*Account),
		creditReqs:  make(map[uuid.UUID]*CreditRequest),
		withdrawals: make(map[uuid.UUID]*WithdrawalRequest),
	}
}

func (m *mockRepository) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *mockRepository) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *mockRepository) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.OwnerID == ownerID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *mockRepository) ApplyEntry(ctx context.Context, account *Account, entry *Entry) error {
	return m.ApplyEntries(ctx, []*Account{account}, []*Entry{entry})
}

func (m *mockRepository) ApplyEntries(ctx context.Context, accounts []*Account, entries []*Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range accounts {
		stored, ok := m.accounts[account.ID]
		if !ok {
			return apperr.ErrNotFound
		}
		stored.Balance = account.Balance
	}
	for _, entry := range entries {
		m.entries = append(m.entries, *entry)
	}
	return nil
}

func (m *mockRepository) GetEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) SumEntryDeltas(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.entries {
		if e.AccountID == accountID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (m *mockRepository) CreateCreditRequest(ctx context.Context, req *CreditRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *req
	m.creditReqs[req.ID] = &copied
	return nil
}

func (m *mockRepository) GetCreditRequest(ctx context.Context, id uuid.UUID) (*CreditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.creditReqs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockRepository) UpdateCreditRequest(ctx context.Context, req *CreditRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creditUpdateErr != nil {
		err := m.creditUpdateErr
		m.creditUpdateErr = nil
		return err
	}
	copied := *req
	m.creditReqs[req.ID] = &copied
	return nil
}

func (m *mockRepository) ListPendingCreditRequests(ctx context.Context) ([]CreditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CreditRequest
	for _, req := range m.creditReqs {
		if req.Status == RequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockRepository) CreateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *req
	m.withdrawals[req.ID] = &copied
	return nil
}

func (m *mockRepository) GetWithdrawalRequest(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.withdrawals[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockRepository) UpdateWithdrawalRequest(ctx context.Context, req *WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.withdrawalUpdateErr != nil {
		err := m.withdrawalUpdateErr
		m.withdrawalUpdateErr = nil
		return err
	}
	copied := *req
	m.withdrawals[req.ID] = &copied
	return nil
}

func newTestAccount(t *testing.T, svc Service, balance int64) *Account {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), OwnerUser, uuid.New())
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if balance > 0 {
		if _, err := svc.Credit(context.Background(), account.ID, balance, "initial", nil); err != nil {
			t.Fatalf("Credit: %v", err)
		}
	}
	return account
}

func TestBalanceEqualsSumOfEntries(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 100)

	if _, err := svc.Debit(ctx, account.ID, 30, "spend", nil); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if _, err := svc.Credit(ctx, account.ID, 15, "refund", nil); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	got, err := svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	sum, _ := repo.SumEntryDeltas(ctx, account.ID)

	if got.Balance != 85 {
		t.Errorf("balance = %d, want 85", got.Balance)
	}
	if got.Balance != sum {
		t.Errorf("balance %d != sum of entry deltas %d", got.Balance, sum)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 10)

	_, err := svc.Debit(ctx, account.ID, 11, "spend", nil)
	if !errors.Is(err, apperr.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 10 {
		t.Errorf("balance after failed debit = %d, want 10", got.Balance)
	}
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 50)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Debit(ctx, account.ID, 10, "spend", nil); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 5 {
		t.Errorf("successful debits = %d, want 5", successes)
	}
	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 0 {
		t.Errorf("balance = %d, want 0", got.Balance)
	}
	sum, _ := repo.SumEntryDeltas(ctx, account.ID)
	if got.Balance != sum {
		t.Errorf("balance %d != sum of entry deltas %d", got.Balance, sum)
	}
}

func TestTransferMovesBothLegs(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	from := newTestAccount(t, svc, 200)
	to := newTestAccount(t, svc, 0)

	if err := svc.Transfer(ctx, from.ID, to.ID, 80, ReasonVendorEarning, nil); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	fromAfter, _ := svc.GetAccount(ctx, from.ID)
	toAfter, _ := svc.GetAccount(ctx, to.ID)
	if fromAfter.Balance != 120 || toAfter.Balance != 80 {
		t.Errorf("balances = %d/%d, want 120/80", fromAfter.Balance, toAfter.Balance)
	}

	// Insufficient transfer leaves both untouched.
	err := svc.Transfer(ctx, from.ID, to.ID, 121, ReasonVendorEarning, nil)
	if !errors.Is(err, apperr.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	fromAfter, _ = svc.GetAccount(ctx, from.ID)
	toAfter, _ = svc.GetAccount(ctx, to.ID)
	if fromAfter.Balance != 120 || toAfter.Balance != 80 {
		t.Errorf("balances after failed transfer = %d/%d, want 120/80", fromAfter.Balance, toAfter.Balance)
	}
}

func TestConcurrentOpposingTransfersDoNotDeadlock(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	a := newTestAccount(t, svc, 1000)
	b := newTestAccount(t, svc, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = svc.Transfer(ctx, a.ID, b.ID, 1, "ping", nil)
		}()
		go func() {
			defer wg.Done()
			_ = svc.Transfer(ctx, b.ID, a.ID, 1, "pong", nil)
		}()
	}
	wg.Wait()

	aAfter, _ := svc.GetAccount(ctx, a.ID)
	bAfter, _ := svc.GetAccount(ctx, b.ID)
	if aAfter.Balance+bAfter.Balance != 2000 {
		t.Errorf("total balance = %d, want 2000", aAfter.Balance+bAfter.Balance)
	}
}

func TestDebitUpToFloorsAtZero(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 30)

	debited, err := svc.DebitUpTo(ctx, account.ID, 100, ReasonRefundReversal, nil)
	if err != nil {
		t.Fatalf("DebitUpTo: %v", err)
	}
	if debited != 30 {
		t.Errorf("debited = %d, want 30", debited)
	}
	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 0 {
		t.Errorf("balance = %d, want 0", got.Balance)
	}

	// Second call on an empty account debits nothing and appends no entry.
	before := len(repo.entries)
	debited, err = svc.DebitUpTo(ctx, account.ID, 5, ReasonRefundReversal, nil)
	if err != nil || debited != 0 {
		t.Fatalf("DebitUpTo on empty account = (%d, %v), want (0, nil)", debited, err)
	}
	if len(repo.entries) != before {
		t.Errorf("empty DebitUpTo appended an entry")
	}
}

func TestRefundPointsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		points int64
		pct    int
		want   int64
	}{
		{100, 100, 100},
		{100, 75, 75},
		{100, 95, 95},
		{1, 75, 1},   // 0.75 rounds up
		{2, 75, 2},   // 1.5 rounds up
		{1, 25, 0},   // 0.25 rounds down
		{0, 100, 0},
		{50, 0, 0},
	}
	for _, tc := range cases {
		if got := RefundPoints(tc.points, tc.pct); got != tc.want {
			t.Errorf("RefundPoints(%d, %d) = %d, want %d", tc.points, tc.pct, got, tc.want)
		}
	}
}

func TestCreditRequestLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 0)
	admin := uuid.New()

	req, err := svc.SubmitCreditRequest(ctx, account.ID, 500, "vendor top-up for launch promo")
	if err != nil {
		t.Fatalf("SubmitCreditRequest: %v", err)
	}

	approved, err := svc.ApproveCreditRequest(ctx, req.ID, admin, "ok")
	if err != nil {
		t.Fatalf("ApproveCreditRequest: %v", err)
	}
	if approved.Status != RequestApproved {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}

	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 500 {
		t.Errorf("balance = %d, want 500", got.Balance)
	}

	// Terminal states are final.
	if _, err := svc.ApproveCreditRequest(ctx, req.ID, admin, "again"); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("re-approve err = %v, want ErrInvalidState", err)
	}
	if _, err := svc.RejectCreditRequest(ctx, req.ID, admin, "flip"); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("reject-after-approve err = %v, want ErrInvalidState", err)
	}
}

func TestRejectedCreditRequestLeavesLedgerUntouched(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 0)
	req, _ := svc.SubmitCreditRequest(ctx, account.ID, 500, "top-up request for testing")

	if _, err := svc.RejectCreditRequest(ctx, req.ID, uuid.New(), "no"); err != nil {
		t.Fatalf("RejectCreditRequest: %v", err)
	}

	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 0 {
		t.Errorf("balance = %d, want 0", got.Balance)
	}
	if len(repo.entries) != 0 {
		t.Errorf("rejection appended %d ledger entries, want 0", len(repo.entries))
	}
}

func TestWithdrawalApprovalDebits(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 100)
	req, err := svc.SubmitWithdrawalRequest(ctx, account.ID, 60)
	if err != nil {
		t.Fatalf("SubmitWithdrawalRequest: %v", err)
	}

	if _, err := svc.ApproveWithdrawalRequest(ctx, req.ID, uuid.New(), ""); err != nil {
		t.Fatalf("ApproveWithdrawalRequest: %v", err)
	}
	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 40 {
		t.Errorf("balance = %d, want 40", got.Balance)
	}
}

func TestApproveCreditRequestRevertsWhenUpdateFails(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 100)
	req, err := svc.SubmitCreditRequest(ctx, account.ID, 500, "top-up request for testing")
	if err != nil {
		t.Fatalf("SubmitCreditRequest: %v", err)
	}

	repo.creditUpdateErr = errors.New("connection reset")
	if _, err := svc.ApproveCreditRequest(ctx, req.ID, uuid.New(), ""); err == nil {
		t.Fatal("ApproveCreditRequest succeeded despite failing update")
	}

	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 100 {
		t.Errorf("balance after failed approval = %d, want 100", got.Balance)
	}
	stored, _ := repo.GetCreditRequest(ctx, req.ID)
	if stored.Status != RequestPending {
		t.Errorf("status after failed approval = %s, want PENDING", stored.Status)
	}
	if sum, _ := repo.SumEntryDeltas(ctx, account.ID); sum != got.Balance {
		t.Errorf("entry deltas sum to %d, balance is %d", sum, got.Balance)
	}

	// The request stayed resolvable; a retry applies the credit exactly once.
	if _, err := svc.ApproveCreditRequest(ctx, req.ID, uuid.New(), ""); err != nil {
		t.Fatalf("retried ApproveCreditRequest: %v", err)
	}
	got, _ = svc.GetAccount(ctx, account.ID)
	if got.Balance != 600 {
		t.Errorf("balance after retry = %d, want 600", got.Balance)
	}
}

func TestApproveWithdrawalReturnsPointsWhenUpdateFails(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	account := newTestAccount(t, svc, 100)
	req, err := svc.SubmitWithdrawalRequest(ctx, account.ID, 60)
	if err != nil {
		t.Fatalf("SubmitWithdrawalRequest: %v", err)
	}

	repo.withdrawalUpdateErr = errors.New("connection reset")
	if _, err := svc.ApproveWithdrawalRequest(ctx, req.ID, uuid.New(), ""); err == nil {
		t.Fatal("ApproveWithdrawalRequest succeeded despite failing update")
	}

	got, _ := svc.GetAccount(ctx, account.ID)
	if got.Balance != 100 {
		t.Errorf("balance after failed approval = %d, want 100", got.Balance)
	}
	stored, _ := repo.GetWithdrawalRequest(ctx, req.ID)
	if stored.Status != RequestPending {
		t.Errorf("status after failed approval = %s, want PENDING", stored.Status)
	}

	// A retry must debit exactly once, not twice.
	if _, err := svc.ApproveWithdrawalRequest(ctx, req.ID, uuid.New(), ""); err != nil {
		t.Fatalf("retried ApproveWithdrawalRequest: %v", err)
	}
	got, _ = svc.GetAccount(ctx, account.ID)
	if got.Balance != 40 {
		t.Errorf("balance after retry = %d, want 40", got.Balance)
	}
	if sum, _ := repo.SumEntryDeltas(ctx, account.ID); sum != got.Balance {
		t.Errorf("entry deltas sum to %d, balance is %d", sum, got.Balance)
	}
}

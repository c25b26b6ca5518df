package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// Store is an in-memory database shared by the mock repositories. Writes made
// inside a MockTransaction are undone when it rolls back without committing.
type Store struct {
	mu   sync.Mutex
	data state
}

type state struct {
	users        map[string]domain.User
	accounts     map[string]domain.Account
	balances     map[string]domain.AccountBalance
	transactions map[string]domain.Transaction
	txOrder      []string
	entries      []domain.JournalEntry
	shares       map[string]domain.RevenueShare
	shareOrder   []string
	orders       map[string]domain.Order
	payments     map[string]domain.Payment
	designations map[int]domain.Designation
	events       []domain.OutboxEvent
}

func (s state) clone() state {
	c := state{
		users:        make(map[string]domain.User, len(s.users)),
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		balances:     make(map[string]domain.AccountBalance, len(s.balances)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		txOrder:      append([]string(nil), s.txOrder...),
		entries:      append([]domain.JournalEntry(nil), s.entries...),
		shares:       make(map[string]domain.RevenueShare, len(s.shares)),
		shareOrder:   append([]string(nil), s.shareOrder...),
		orders:       make(map[string]domain.Order, len(s.orders)),
		payments:     make(map[string]domain.Payment, len(s.payments)),
		designations: make(map[int]domain.Designation, len(s.designations)),
		events:       append([]domain.OutboxEvent(nil), s.events...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.shares {
		c.shares[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.designations {
		c.designations[k] = v
	}
	return c
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: state{}.clone()}
}

// SeedUser stores a user.
func (s *Store) SeedUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = *u
}

// SeedAccount stores an account and its balance snapshot.
func (s *Store) SeedAccount(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.accounts[a.ID] = *a
}

// SeedOrder stores an order with its items.
func (s *Store) SeedOrder(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.orders[o.ID] = *o
}

// SeedPayment stores a payment.
func (s *Store) SeedPayment(p *domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.payments[p.ID] = *p
}

// SeedDesignation stores a designation tier.
func (s *Store) SeedDesignation(d *domain.Designation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.designations[d.Level] = *d
}

// SeedRevenueShare stores a revenue share.
func (s *Store) SeedRevenueShare(r *domain.RevenueShare) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.shares[r.ID] = *r
	s.data.shareOrder = append(s.data.shareOrder, r.ID)
}

// SeedTransaction stores a transaction without journal entries.
func (s *Store) SeedTransaction(t *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	c.Entries = nil
	s.data.transactions[t.ID] = c
	s.data.txOrder = append(s.data.txOrder, t.ID)
}

// User returns a copy of a stored user.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	return u, ok
}

// Account returns a copy of a stored account.
func (s *Store) Account(id string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.accounts[id]
	return a, ok
}

// Accounts returns copies of every stored account.
func (s *Store) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, 0, len(s.data.accounts))
	for _, a := range s.data.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Balance returns the snapshot of an account.
func (s *Store) Balance(accountID string) (domain.AccountBalance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.balances[accountID]
	return b, ok
}

// Order returns a copy of a stored order.
func (s *Store) Order(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[id]
	return o, ok
}

// RevenueShare returns a copy of a stored revenue share.
func (s *Store) RevenueShare(id string) (domain.RevenueShare, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.shares[id]
	return r, ok
}

// RevenueShares returns every stored share in creation order.
func (s *Store) RevenueShares() []domain.RevenueShare {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RevenueShare, 0, len(s.data.shareOrder))
	for _, id := range s.data.shareOrder {
		out = append(out, s.data.shares[id])
	}
	return out
}

// Transactions returns every stored transaction in creation order.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, 0, len(s.data.txOrder))
	for _, id := range s.data.txOrder {
		out = append(out, s.data.transactions[id])
	}
	return out
}

// JournalEntries returns every stored journal entry.
func (s *Store) JournalEntries() []domain.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.JournalEntry(nil), s.data.entries...)
}

// JournalSum returns Σ(debit − credit) for an account.
func (s *Store) JournalSum(accountID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journalSum(accountID)
}

func (s *Store) journalSum(accountID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range s.data.entries {
		if e.AccountID == accountID {
			sum = sum.Add(e.Debit.Sub(e.Credit))
		}
	}
	return sum
}

// Events returns every stored outbox event.
func (s *Store) Events() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxEvent(nil), s.data.events...)
}

// TxManager returns a transaction manager bound to the store.
func (s *Store) TxManager() *MockTransactionManager {
	return &MockTransactionManager{store: s}
}

func (s *Store) begin() *MockTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.data.clone()
	return &MockTransaction{store: s, snapshot: &snap}
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	store *Store

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	Begun     int
	Committed int
}

func NewMockTransactionManager() *MockTransactionManager {
	return NewStore().TxManager()
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.Begun++
	m.mu.Unlock()

	tx := m.store.begin()
	tx.onCommit = func() {
		m.mu.Lock()
		m.Committed++
		m.mu.Unlock()
	}
	return tx, nil
}

// MockTransaction is a mock implementation of Transaction. Begin opens a
// savepoint with its own snapshot.
type MockTransaction struct {
	store    *Store
	snapshot *state
	done     bool
	onCommit func()

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.store == nil {
		return &MockTransaction{}, nil
	}
	return m.store.begin(), nil
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.done = true
	if m.onCommit != nil {
		m.onCommit()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if m.done {
		return nil
	}
	m.done = true
	if m.store != nil && m.snapshot != nil {
		m.store.mu.Lock()
		m.store.data = *m.snapshot
		m.store.mu.Unlock()
	}
	return nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	store *Store

	GetByIDFunc                  func(ctx context.Context, id string) (*domain.User, error)
	UpdateLeadershipFunc         func(ctx context.Context, tx usecase.Transaction, id string, leadershipID int, designation string, updatedAt time.Time) error
	IncrementDirectReferralsFunc func(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error
}

func NewMockUserRepository(store *Store) *MockUserRepository {
	return &MockUserRepository{store: store}
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	if u, ok := m.store.User(id); ok {
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) UpdateReferral(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	u, ok := m.store.data.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ReferredByID = user.ReferredByID
	u.Generation = user.Generation
	u.Active = user.Active
	u.UpdatedAt = user.UpdatedAt
	m.store.data.users[user.ID] = u
	return nil
}

func (m *MockUserRepository) IncrementDirectReferrals(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	if m.IncrementDirectReferralsFunc != nil {
		return m.IncrementDirectReferralsFunc(ctx, tx, id, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	u, ok := m.store.data.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TotalDirectReferrals++
	u.UpdatedAt = updatedAt
	m.store.data.users[id] = u
	return nil
}

func (m *MockUserRepository) UpdateLeadership(ctx context.Context, tx usecase.Transaction, id string, leadershipID int, designation string, updatedAt time.Time) error {
	if m.UpdateLeadershipFunc != nil {
		return m.UpdateLeadershipFunc(ctx, tx, id, leadershipID, designation, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	u, ok := m.store.data.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LeadershipID = leadershipID
	u.Designation = designation
	u.UpdatedAt = updatedAt
	m.store.data.users[id] = u
	return nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	store *Store

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository(store *Store) *MockAccountRepository {
	return &MockAccountRepository{store: store}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return m.CreateTx(ctx, nil, account)
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, a := range m.store.data.accounts {
		if a.UserID == account.UserID && a.WalletType == account.WalletType && a.Purpose == account.Purpose {
			return domain.ErrAccountExists
		}
	}
	m.store.data.accounts[account.ID] = *account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := m.store.Account(id); ok {
		return &a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if a, ok := m.store.data.accounts[id]; ok {
			accounts = append(accounts, &a)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindByUserAndType(ctx context.Context, tx usecase.Transaction, userID string, walletType domain.WalletType) (*domain.Account, error) {
	return m.find(userID, walletType, domain.PurposeNone)
}

func (m *MockAccountRepository) FindSystemAccount(ctx context.Context, tx usecase.Transaction, userID string, purpose domain.SystemPurpose) (*domain.Account, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, a := range m.store.data.accounts {
		if a.UserID == userID && a.Purpose == purpose {
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) find(userID string, walletType domain.WalletType, purpose domain.SystemPurpose) (*domain.Account, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, a := range m.store.data.accounts {
		if a.UserID == userID && a.WalletType == walletType && a.Purpose == purpose {
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	a, ok := m.store.data.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance
	a.Version++
	a.UpdatedAt = updatedAt
	m.store.data.accounts[id] = a
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	all := m.store.Accounts()
	var accounts []*domain.Account
	for i := offset; i < len(all) && i < offset+limit; i++ {
		a := all[i]
		accounts = append(accounts, &a)
	}
	return accounts, nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	store *Store

	UpsertFunc func(ctx context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error
}

func NewMockBalanceRepository(store *Store) *MockBalanceRepository {
	return &MockBalanceRepository{store: store}
}

func (m *MockBalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, balance)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.data.balances[balance.AccountID] = *balance
	return nil
}

func (m *MockBalanceRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	if b, ok := m.store.Balance(accountID); ok {
		return &b, nil
	}
	return nil, domain.ErrBalanceNotFound
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
}

func NewMockTransactionRepository(store *Store) *MockTransactionRepository {
	return &MockTransactionRepository{store: store}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.store.SeedTransaction(t)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if t, ok := m.store.data.transactions[id]; ok {
		return &t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit, offset int) ([]*domain.Transaction, int, error) {
	all := m.store.Transactions()

	var matched []*domain.Transaction
	for i := len(all) - 1; i >= 0; i-- {
		t := all[i]
		if t.UserID != userID {
			continue
		}
		if (filter.Type != "" && t.Type != filter.Type) ||
			(filter.ValueType != "" && t.ValueType != filter.ValueType) ||
			(filter.Direction != "" && t.Direction != filter.Direction) ||
			(filter.Status != "" && t.Status != filter.Status) {
			continue
		}
		matched = append(matched, &t)
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MockTransactionRepository) SumAmount(ctx context.Context, txType domain.TransactionType, status domain.TransactionStatus, from, to *time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range m.store.Transactions() {
		if t.Type != txType || t.Status != status || !inWindow(t.CreatedAt, from, to) {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
}

func NewMockJournalRepository(store *Store) *MockJournalRepository {
	return &MockJournalRepository{store: store}
}

func (m *MockJournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.data.entries = append(m.store.data.entries, *entry)
	return nil
}

func (m *MockJournalRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.JournalEntry, error) {
	var entries []*domain.JournalEntry
	for _, e := range m.store.JournalEntries() {
		if e.TransactionID == transactionID {
			entries = append(entries, &e)
		}
	}
	return entries, nil
}

func (m *MockJournalRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return m.store.JournalSum(accountID), nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	store *Store

	CheckConsistencyFunc func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockLedgerRepository(store *Store) *MockLedgerRepository {
	return &MockLedgerRepository{store: store}
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.store.JournalEntries() {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits, nil
}

// MockRevenueShareRepository is a mock implementation of RevenueShareRepository.
type MockRevenueShareRepository struct {
	store *Store

	CreateBatchFunc func(ctx context.Context, tx usecase.Transaction, shares []*domain.RevenueShare) error
	MarkPaidFunc    func(ctx context.Context, tx usecase.Transaction, id, payoutTransactionID string, paidAt time.Time) error
	ListPendingFunc func(ctx context.Context, limit int) ([]*domain.RevenueShare, error)
}

func NewMockRevenueShareRepository(store *Store) *MockRevenueShareRepository {
	return &MockRevenueShareRepository{store: store}
}

func (m *MockRevenueShareRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, shares []*domain.RevenueShare) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, shares)
	}
	for _, s := range shares {
		m.store.SeedRevenueShare(s)
	}
	return nil
}

func (m *MockRevenueShareRepository) GetByID(ctx context.Context, id string) (*domain.RevenueShare, error) {
	if s, ok := m.store.RevenueShare(id); ok {
		return &s, nil
	}
	return nil, domain.ErrRevenueShareNotFound
}

func (m *MockRevenueShareRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RevenueShare, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRevenueShareRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id, payoutTransactionID string, paidAt time.Time) error {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, tx, id, payoutTransactionID, paidAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	s, ok := m.store.data.shares[id]
	if !ok {
		return domain.ErrRevenueShareNotFound
	}
	if err := s.MarkPaid(payoutTransactionID, paidAt); err != nil {
		return err
	}
	m.store.data.shares[id] = s
	return nil
}

func (m *MockRevenueShareRepository) ListPending(ctx context.Context, limit int) ([]*domain.RevenueShare, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit)
	}
	var out []*domain.RevenueShare
	for _, s := range m.store.RevenueShares() {
		if len(out) == limit {
			break
		}
		if s.Status == domain.RevenueShareStatusPending {
			out = append(out, &s)
		}
	}
	return out, nil
}

func (m *MockRevenueShareRepository) ListByRecipient(ctx context.Context, recipientID string, filter domain.CommissionFilter, limit, offset int) ([]*domain.RevenueShare, int, error) {
	all := m.store.RevenueShares()

	var matched []*domain.RevenueShare
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if s.RecipientID != recipientID {
			continue
		}
		if (filter.Status != "" && s.Status != filter.Status) ||
			(filter.GenerationLevel != 0 && s.GenerationLevel != filter.GenerationLevel) ||
			!inWindow(s.CreatedAt, filter.From, filter.To) {
			continue
		}
		matched = append(matched, &s)
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MockRevenueShareRepository) TotalsByOrder(ctx context.Context, orderID string) (domain.CommissionTotals, error) {
	order, ok := m.store.Order(orderID)
	if !ok {
		return domain.CommissionTotals{}, domain.ErrOrderNotFound
	}

	items := make(map[string]bool, len(order.Items))
	for _, it := range order.Items {
		items[it.ID] = true
	}

	totals := domain.CommissionTotals{Total: decimal.Zero}
	for _, s := range m.store.RevenueShares() {
		if !items[s.OrderItemID] {
			continue
		}
		totals.Total = totals.Total.Add(s.Amount)
		if s.IsPaid() {
			totals.PaidCount++
		} else {
			totals.PendingCount++
		}
	}
	return totals, nil
}

func (m *MockRevenueShareRepository) SumAmount(ctx context.Context, status domain.RevenueShareStatus, from, to *time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range m.store.RevenueShares() {
		if s.Status == status && inWindow(s.CreatedAt, from, to) {
			sum = sum.Add(s.Amount)
		}
	}
	return sum, nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	store *Store

	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, updatedAt time.Time) error
}

func NewMockOrderRepository(store *Store) *MockOrderRepository {
	return &MockOrderRepository{store: store}
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if o, ok := m.store.Order(id); ok {
		return &o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	o, ok := m.store.data.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	m.store.data.orders[id] = o
	return nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	store *Store
}

func NewMockPaymentRepository(store *Store) *MockPaymentRepository {
	return &MockPaymentRepository{store: store}
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if p, ok := m.store.data.payments[id]; ok {
		return &p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

// MockDesignationRepository is a mock implementation of DesignationRepository.
type MockDesignationRepository struct {
	store *Store
}

func NewMockDesignationRepository(store *Store) *MockDesignationRepository {
	return &MockDesignationRepository{store: store}
}

func (m *MockDesignationRepository) GetByLevel(ctx context.Context, level int) (*domain.Designation, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if d, ok := m.store.data.designations[level]; ok {
		return &d, nil
	}
	return nil, domain.ErrDesignationNotFound
}

// MockLeadershipStatsRepository computes leadership metrics from the store.
type MockLeadershipStatsRepository struct {
	store *Store
}

func NewMockLeadershipStatsRepository(store *Store) *MockLeadershipStatsRepository {
	return &MockLeadershipStatsRepository{store: store}
}

func (m *MockLeadershipStatsRepository) CountDirectReferrals(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.children(userID, false))), nil
}

func (m *MockLeadershipStatsRepository) CountActiveDirectReferrals(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.children(userID, true))), nil
}

func (m *MockLeadershipStatsRepository) CountTeam(ctx context.Context, userID string) (int64, error) {
	return int64(len(m.team(userID))), nil
}

func (m *MockLeadershipStatsRepository) PersonalSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	return m.sales(map[string]bool{userID: true}), nil
}

func (m *MockLeadershipStatsRepository) TeamSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	members := make(map[string]bool)
	for _, id := range m.team(userID) {
		members[id] = true
	}
	return m.sales(members), nil
}

func (m *MockLeadershipStatsRepository) children(userID string, activeOnly bool) []string {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var ids []string
	for _, u := range m.store.data.users {
		if u.ReferredByID == userID && (!activeOnly || u.Active) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

func (m *MockLeadershipStatsRepository) team(userID string) []string {
	visited := map[string]bool{userID: true}
	queue := []string{userID}
	var team []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range m.children(id, false) {
			if visited[child] {
				continue
			}
			visited[child] = true
			team = append(team, child)
			queue = append(queue, child)
		}
	}
	return team
}

func (m *MockLeadershipStatsRepository) sales(users map[string]bool) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range m.store.Transactions() {
		if users[t.UserID] && t.Type == domain.TransactionTypePurchase && t.Status == domain.TransactionStatusCompleted {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository(store *Store) *MockOutboxRepository {
	return &MockOutboxRepository{store: store}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.data.events = append(m.store.data.events, *event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	for _, e := range m.store.Events() {
		if len(out) == limit {
			break
		}
		if !e.Published {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for i := range m.store.data.events {
		if m.store.data.events[i].ID == id {
			m.store.data.events[i].Published = true
			m.store.data.events[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	kept := m.store.data.events[:0]
	for _, e := range m.store.data.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.store.data.events = kept
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func inWindow(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}

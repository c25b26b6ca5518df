package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
	"github.com/iho/mlmledger/internal/usecase/mocks"
)

const platformUserID = "platform"

type harness struct {
	store *mocks.Store
	txMgr *mocks.MockTransactionManager
	idGen *mocks.MockIDGenerator

	userRepo    *mocks.MockUserRepository
	accountRepo *mocks.MockAccountRepository
	balanceRepo *mocks.MockBalanceRepository
	txRepo      *mocks.MockTransactionRepository
	journalRepo *mocks.MockJournalRepository
	ledgerRepo  *mocks.MockLedgerRepository
	shareRepo   *mocks.MockRevenueShareRepository
	orderRepo   *mocks.MockOrderRepository
	outboxRepo  *mocks.MockOutboxRepository

	accounts       *usecase.AccountUseCase
	transactions   *usecase.TransactionUseCase
	revenue        *usecase.RevenueUseCase
	orchestrator   *usecase.OrchestratorUseCase
	leadership     *usecase.LeadershipUseCase
	referral       *usecase.ReferralUseCase
	reconciliation *usecase.ReconciliationUseCase
}

type harnessOptions struct {
	fulfillment usecase.FulfillmentService
	metrics     usecase.MetricsRecorder
	payFromPool bool
}

func newHarness(t *testing.T, opts ...func(*harnessOptions)) *harness {
	t.Helper()

	var o harnessOptions
	for _, opt := range opts {
		opt(&o)
	}

	store := mocks.NewStore()
	h := &harness{
		store:       store,
		txMgr:       store.TxManager(),
		idGen:       mocks.NewMockIDGenerator(),
		userRepo:    mocks.NewMockUserRepository(store),
		accountRepo: mocks.NewMockAccountRepository(store),
		balanceRepo: mocks.NewMockBalanceRepository(store),
		txRepo:      mocks.NewMockTransactionRepository(store),
		journalRepo: mocks.NewMockJournalRepository(store),
		ledgerRepo:  mocks.NewMockLedgerRepository(store),
		shareRepo:   mocks.NewMockRevenueShareRepository(store),
		orderRepo:   mocks.NewMockOrderRepository(store),
		outboxRepo:  mocks.NewMockOutboxRepository(store),
	}
	logger := zerolog.Nop()

	h.accounts = usecase.NewAccountUseCase(h.accountRepo, h.userRepo, h.balanceRepo, h.idGen, platformUserID, "BDT")

	h.transactions = usecase.NewTransactionUseCase(usecase.TransactionDeps{
		TxManager:   h.txMgr,
		UserRepo:    h.userRepo,
		AccountRepo: h.accountRepo,
		BalanceRepo: h.balanceRepo,
		TxRepo:      h.txRepo,
		JournalRepo: h.journalRepo,
		OutboxRepo:  h.outboxRepo,
		IDGen:       h.idGen,
		Metrics:     o.metrics,
		Logger:      logger,
		Currency:    "BDT",
	})

	var err error
	h.revenue, err = usecase.NewRevenueUseCase(usecase.RevenueDeps{
		TxManager:             h.txMgr,
		UserRepo:              h.userRepo,
		TxRepo:                h.txRepo,
		ShareRepo:             h.shareRepo,
		OutboxRepo:            h.outboxRepo,
		Accounts:              h.accounts,
		Transactions:          h.transactions,
		IDGen:                 h.idGen,
		Metrics:               o.metrics,
		Logger:                logger,
		PayFromCommissionPool: o.payFromPool,
	})
	require.NoError(t, err)

	h.orchestrator = usecase.NewOrchestratorUseCase(usecase.OrchestratorDeps{
		TxManager:          h.txMgr,
		UserRepo:           h.userRepo,
		OrderRepo:          h.orderRepo,
		PaymentRepo:        mocks.NewMockPaymentRepository(store),
		ShareRepo:          h.shareRepo,
		TxRepo:             h.txRepo,
		OutboxRepo:         h.outboxRepo,
		Accounts:           h.accounts,
		Transactions:       h.transactions,
		Revenue:            h.revenue,
		Fulfillment:        o.fulfillment,
		IDGen:              h.idGen,
		Metrics:            o.metrics,
		Logger:             logger,
		FulfillmentTimeout: time.Second,
	})

	h.leadership = usecase.NewLeadershipUseCase(usecase.LeadershipDeps{
		TxManager:          h.txMgr,
		UserRepo:           h.userRepo,
		DesignationRepo:    mocks.NewMockDesignationRepository(store),
		StatsRepo:          mocks.NewMockLeadershipStatsRepository(store),
		OutboxRepo:         h.outboxRepo,
		IDGen:              h.idGen,
		Metrics:            o.metrics,
		Logger:             logger,
		MinDirectReferrals: 2,
	})

	h.referral = usecase.NewReferralUseCase(h.txMgr, nil, h.userRepo, h.leadership, logger)

	h.reconciliation = usecase.NewReconciliationUseCase(h.accountRepo, h.balanceRepo, h.journalRepo, h.ledgerRepo)

	return h
}

// seedUser stores an active user with an empty MONEY wallet and returns the wallet.
func (h *harness) seedUser(t *testing.T, id, referrerID string) *domain.Account {
	t.Helper()

	h.store.SeedUser(&domain.User{ID: id, Email: id + "@example.com", ReferredByID: referrerID, Active: true})

	wallet, err := h.accounts.FindOrCreateWallet(context.Background(), id, domain.WalletTypeMoney, "")
	require.NoError(t, err)

	return wallet
}

// seedChain stores purchaser → uplines[0] → uplines[1] ..., nearest upline first.
func (h *harness) seedChain(t *testing.T, purchaser string, uplines ...string) {
	t.Helper()

	for i := len(uplines) - 1; i >= 0; i-- {
		referrer := ""
		if i+1 < len(uplines) {
			referrer = uplines[i+1]
		}
		h.seedUser(t, uplines[i], referrer)
	}

	referrer := ""
	if len(uplines) > 0 {
		referrer = uplines[0]
	}
	h.seedUser(t, purchaser, referrer)
}

func (h *harness) seedPaidOrder(orderID, paymentID, userID string, items ...decimal.Decimal) {
	total := decimal.Zero
	order := &domain.Order{ID: orderID, UserID: userID, Status: domain.OrderStatusPaid, Currency: "BDT"}
	for i, price := range items {
		order.Items = append(order.Items, &domain.OrderItem{
			ID:         orderID + "-item-" + string(rune('a'+i)),
			OrderID:    orderID,
			ProductID:  "product",
			Quantity:   1,
			UnitPrice:  price,
			TotalPrice: price,
		})
		total = total.Add(price)
	}
	order.TotalAmount = total

	h.store.SeedOrder(order)
	h.store.SeedPayment(&domain.Payment{
		ID:      paymentID,
		OrderID: orderID,
		Amount:  total,
		Status:  domain.PaymentStatusSuccess,
		Gateway: "test",
	})
}

func (h *harness) balanceOf(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, ok := h.store.Account(accountID)
	require.True(t, ok, "account %s", accountID)
	return acc.Balance
}

func (h *harness) walletOf(t *testing.T, userID string) *domain.Account {
	t.Helper()
	w, err := h.accounts.FindWalletByUserAndType(context.Background(), userID, domain.WalletTypeMoney)
	require.NoError(t, err)
	return w
}

// requireLedgerInvariant checks balance == Σ(debit − credit) == snapshot for every account.
func requireLedgerInvariant(t *testing.T, store *mocks.Store) {
	t.Helper()
	for _, acc := range store.Accounts() {
		sum := store.JournalSum(acc.ID)
		require.True(t, acc.Balance.Equal(sum), "account %s balance %s journal %s", acc.ID, acc.Balance, sum)
		if snap, ok := store.Balance(acc.ID); ok {
			require.True(t, snap.Balance.Equal(sum), "account %s snapshot %s journal %s", acc.ID, snap.Balance, sum)
		}
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

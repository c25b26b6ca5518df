package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
	"github.com/iho/mlmledger/internal/usecase/mocks"
)

func fulfilled(ctrl *gomock.Controller) *mocks.MockFulfillmentService {
	f := mocks.NewMockFulfillmentService(ctrl)
	f.EXPECT().ProcessOrderFulfillment(gomock.Any(), gomock.Any()).
		Return(&domain.FulfillmentResult{Success: true}, nil).AnyTimes()
	return f
}

func TestOrchestrator_ProcessOrderPayment_ThreeGenerationScenario(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	h := newHarness(t, func(o *harnessOptions) { o.fulfillment = fulfilled(ctrl) })

	h.seedChain(t, "P", "U1", "U2", "U3")
	h.seedPaidOrder("order-1", "pay-1", "P", d("1000"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	require.NotNil(t, res.PurchaseTransaction)
	assert.Equal(t, domain.TransactionTypePurchase, res.PurchaseTransaction.Type)
	assert.True(t, res.PurchaseTransaction.Amount.Equal(d("1000")))

	want := map[string]decimal.Decimal{"U1": d("100"), "U2": d("80"), "U3": d("70")}
	require.Len(t, res.RevenueShares, 3)
	for _, s := range res.RevenueShares {
		assert.True(t, s.Amount.Equal(want[s.RecipientID]), "%s got %s", s.RecipientID, s.Amount)
		assert.Equal(t, domain.RevenueShareStatusPaid, s.Status)
		assert.Equal(t, "order-1-item-a", s.OrderItemID)
	}

	require.Len(t, res.PaidCommissions, 3)
	disbursed := decimal.Zero
	for _, p := range res.PaidCommissions {
		disbursed = disbursed.Add(p.Share.Amount)
	}
	assert.True(t, disbursed.Equal(d("250")))

	system, err := h.accounts.SystemAccounts(ctx)
	require.NoError(t, err)
	assert.True(t, h.balanceOf(t, system.Revenue.ID).Equal(d("750")))
	for id, amount := range want {
		assert.True(t, h.balanceOf(t, h.walletOf(t, id).ID).Equal(amount), id)
	}

	assert.True(t, res.Fulfillment.Success)
	assert.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
	stored, _ := h.store.Order("order-1")
	assert.Equal(t, domain.OrderStatusCompleted, stored.Status)

	requireLedgerInvariant(t, h.store)
}

func TestOrchestrator_ProcessOrderPayment_EagerAndBatchPartition(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	h := newHarness(t, func(o *harnessOptions) { o.fulfillment = fulfilled(ctrl) })

	h.seedChain(t, "P", "G1", "G2", "G3", "G4", "G5")
	inactive, _ := h.store.User("G2")
	inactive.Active = false
	h.store.SeedUser(&inactive)

	h.seedPaidOrder("order-1", "pay-1", "P", d("200"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)
	require.Len(t, res.RevenueShares, 5)

	status := make(map[string]domain.RevenueShareStatus)
	for _, s := range h.store.RevenueShares() {
		status[s.RecipientID] = s.Status
	}

	assert.Equal(t, domain.RevenueShareStatusPaid, status["G1"])
	assert.Equal(t, domain.RevenueShareStatusPending, status["G2"], "inactive recipient")
	assert.Equal(t, domain.RevenueShareStatusPaid, status["G3"])
	assert.Equal(t, domain.RevenueShareStatusPending, status["G4"])
	assert.Equal(t, domain.RevenueShareStatusPending, status["G5"])
	assert.Len(t, res.PaidCommissions, 2)
}

func TestOrchestrator_ProcessOrderPayment_PerItemDistribution(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedChain(t, "P", "U1")
	h.seedPaidOrder("order-1", "pay-1", "P", d("300"), d("0"), d("200"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	require.Len(t, res.RevenueShares, 2)
	assert.Equal(t, "order-1-item-a", res.RevenueShares[0].OrderItemID)
	assert.True(t, res.RevenueShares[0].Amount.Equal(d("30")))
	assert.Equal(t, "order-1-item-c", res.RevenueShares[1].OrderItemID)
	assert.True(t, res.RevenueShares[1].Amount.Equal(d("20")))

	status, err := h.orchestrator.GetOrderProcessingStatus(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, status.Commissions.Total.Equal(d("50")))
	assert.Equal(t, 2, status.Commissions.PaidCount)
	assert.Equal(t, 0, status.Commissions.PendingCount)
}

func TestOrchestrator_ProcessOrderPayment_FulfillmentFailureKeepsFinancialLeg(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	fulfillment := mocks.NewMockFulfillmentService(ctrl)
	fulfillment.EXPECT().ProcessOrderFulfillment(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("warehouse unreachable"))

	metrics := mocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().TransactionBooked(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().RevenueSharesCreated(3)
	metrics.EXPECT().CommissionPaid(gomock.Any()).Times(3)
	metrics.EXPECT().OrderProcessed(domain.OrderStatusProcessing)
	metrics.EXPECT().FulfillmentFailed()

	h := newHarness(t, func(o *harnessOptions) {
		o.fulfillment = fulfillment
		o.metrics = metrics
	})
	h.seedChain(t, "P", "U1", "U2", "U3")
	h.seedPaidOrder("order-1", "pay-1", "P", d("1000"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	assert.False(t, res.Fulfillment.Success)
	assert.Contains(t, res.Fulfillment.Error, "warehouse unreachable")
	assert.Equal(t, domain.OrderStatusProcessing, res.Order.Status)

	stored, _ := h.store.Order("order-1")
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
	assert.Len(t, h.store.RevenueShares(), 3)
	assert.Len(t, res.PaidCommissions, 3)

	var purchases int
	for _, tx := range h.store.Transactions() {
		if tx.Type == domain.TransactionTypePurchase {
			purchases++
		}
	}
	assert.Equal(t, 1, purchases)
	requireLedgerInvariant(t, h.store)
}

func TestOrchestrator_ProcessOrderPayment_FailedPayoutIsIsolated(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.seedChain(t, "P", "U1")
	// U2 has no MONEY wallet, so its eager payout fails
	h.store.SeedUser(&domain.User{ID: "U2", Active: true})
	u1, _ := h.store.User("U1")
	u1.ReferredByID = "U2"
	h.store.SeedUser(&u1)

	h.seedPaidOrder("order-1", "pay-1", "P", d("100"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	require.Len(t, res.PaidCommissions, 1)
	assert.Equal(t, "U1", res.PaidCommissions[0].Share.RecipientID)
	require.Len(t, res.FailedPayouts, 1)

	failed, _ := h.store.RevenueShare(res.FailedPayouts[0].RevenueShareID)
	assert.Equal(t, "U2", failed.RecipientID)
	assert.Equal(t, domain.RevenueShareStatusPending, failed.Status)

	var payouts int
	for _, tx := range h.store.Transactions() {
		if tx.Type == domain.TransactionTypeCommissionPayout {
			payouts++
		}
	}
	assert.Equal(t, 1, payouts)
	requireLedgerInvariant(t, h.store)
}

func TestOrchestrator_ProcessOrderPayment_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing payment", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.orchestrator.ProcessOrderPayment(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})

	t.Run("payment not successful", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "P", "")
		h.seedPaidOrder("order-1", "pay-1", "P", d("10"))
		h.store.SeedPayment(&domain.Payment{ID: "pay-2", OrderID: "order-1", Status: domain.PaymentStatusFailed})

		_, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-2")
		assert.ErrorIs(t, err, domain.ErrPaymentNotSuccessful)
		assert.Empty(t, h.store.Transactions())
	})

	t.Run("order processed twice", func(t *testing.T) {
		h := newHarness(t)
		h.seedChain(t, "P", "U1")
		h.seedPaidOrder("order-1", "pay-1", "P", d("10"))

		_, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
		require.NoError(t, err)
		before := len(h.store.JournalEntries())

		_, err = h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
		assert.ErrorIs(t, err, domain.ErrOrderAlreadyProcessed)
		assert.Len(t, h.store.JournalEntries(), before)
	})

	t.Run("financial leg failure rolls back everything", func(t *testing.T) {
		h := newHarness(t)
		h.seedChain(t, "P", "U1")
		h.seedPaidOrder("order-1", "pay-1", "P", d("10"))
		h.shareRepo.CreateBatchFunc = func(context.Context, usecase.Transaction, []*domain.RevenueShare) error {
			return errors.New("constraint violation")
		}

		_, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
		require.Error(t, err)

		assert.Empty(t, h.store.Transactions())
		assert.Empty(t, h.store.JournalEntries())
		stored, _ := h.store.Order("order-1")
		assert.Equal(t, domain.OrderStatusPaid, stored.Status)
	})
}

func TestOrchestrator_RetryOrderFulfillment(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	fulfillment := mocks.NewMockFulfillmentService(ctrl)
	gomock.InOrder(
		fulfillment.EXPECT().ProcessOrderFulfillment(gomock.Any(), gomock.Any()).
			Return(&domain.FulfillmentResult{Success: false, Error: "out of stock"}, nil),
		fulfillment.EXPECT().ProcessOrderFulfillment(gomock.Any(), gomock.Any()).
			Return(&domain.FulfillmentResult{Success: true}, nil),
	)

	h := newHarness(t, func(o *harnessOptions) { o.fulfillment = fulfillment })
	h.seedUser(t, "P", "")
	h.seedPaidOrder("order-1", "pay-1", "P", d("10"))

	res, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, res.Order.Status)

	result, ref, err := h.orchestrator.RetryOrderFulfillment(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, domain.OrderStatusCompleted, ref.Status)

	_, _, err = h.orchestrator.RetryOrderFulfillment(ctx, "order-1")
	assert.ErrorIs(t, err, domain.ErrOrderNotAwaitingDelivery)

	_, _, err = h.orchestrator.RetryOrderFulfillment(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrchestrator_ProcessPendingCommissions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.seedChain(t, "P", "G1", "G2", "G3", "G4", "G5")
	h.store.SeedUser(&domain.User{ID: "orphan", Active: true})
	h.seedPaidOrder("order-1", "pay-1", "P", d("1000"))

	_, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	// a pending share whose recipient has no wallet fails without stopping the batch
	h.store.SeedRevenueShare(&domain.RevenueShare{
		ID: "broken", RecipientID: "orphan", GenerationLevel: 7,
		Amount: d("1"), Currency: "BDT", Status: domain.RevenueShareStatusPending,
		CreatedAt: time.Now().UTC(),
	})

	res, err := h.orchestrator.ProcessPendingCommissions(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Results, 3)
	assert.Equal(t, "broken", res.Results[2].RevenueShareID)
	assert.NotEmpty(t, res.Results[2].Error)

	for _, s := range h.store.RevenueShares() {
		if s.ID != "broken" {
			assert.Equal(t, domain.RevenueShareStatusPaid, s.Status, s.RecipientID)
		}
	}

	again, err := h.orchestrator.ProcessPendingCommissions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Processed)
	assert.Equal(t, 0, again.Successful)
	requireLedgerInvariant(t, h.store)
}

func TestOrchestrator_GetFinancialSummary(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedChain(t, "P", "G1", "G2", "G3", "G4")
	h.seedPaidOrder("order-1", "pay-1", "P", d("1000"))

	_, err := h.orchestrator.ProcessOrderPayment(ctx, "pay-1")
	require.NoError(t, err)

	summary, err := h.orchestrator.GetFinancialSummary(ctx, nil, nil)
	require.NoError(t, err)
	assert.True(t, summary.TotalRevenue.Equal(d("1000")))
	assert.True(t, summary.TotalCommissions.Equal(d("250")))
	assert.True(t, summary.PendingCommissions.Equal(d("60")))
	assert.True(t, summary.PlatformBalance.Equal(d("750")))
	assert.True(t, summary.NetRevenue.Equal(d("750")))

	future := time.Now().Add(time.Hour)
	windowed, err := h.orchestrator.GetFinancialSummary(ctx, &future, nil)
	require.NoError(t, err)
	assert.True(t, windowed.TotalRevenue.IsZero())

	past := time.Now().Add(-time.Hour)
	_, err = h.orchestrator.GetFinancialSummary(ctx, &future, &past)
	assert.True(t, domain.IsValidation(err))
}

func TestOrchestrator_GetCommissionHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedChain(t, "P1", "U1")
	h.seedUser(t, "P2", "U1")
	h.seedPaidOrder("order-1", "pay-1", "P1", d("100"))
	h.seedPaidOrder("order-2", "pay-2", "P2", d("50"))

	for _, pay := range []string{"pay-1", "pay-2"} {
		_, err := h.orchestrator.ProcessOrderPayment(ctx, pay)
		require.NoError(t, err)
	}

	hist, err := h.orchestrator.GetCommissionHistory(ctx, usecase.CommissionHistoryInput{UserID: "U1"})
	require.NoError(t, err)
	assert.Equal(t, 2, hist.Total)
	require.Len(t, hist.Shares, 2)
	assert.True(t, hist.Shares[0].Amount.Equal(d("5")))

	filtered, err := h.orchestrator.GetCommissionHistory(ctx, usecase.CommissionHistoryInput{
		UserID: "U1",
		Filter: domain.CommissionFilter{Status: domain.RevenueShareStatusPending},
	})
	require.NoError(t, err)
	assert.Zero(t, filtered.Total)

	_, err = h.orchestrator.GetCommissionHistory(ctx, usecase.CommissionHistoryInput{
		UserID: "U1",
		Filter: domain.CommissionFilter{Status: "lost"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

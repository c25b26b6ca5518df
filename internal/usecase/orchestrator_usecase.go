package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// OrchestratorUseCase runs the order-payment saga: purchase booking, revenue
// distribution, eager payouts, then fulfillment.
type OrchestratorUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	userRepo     UserRepository
	orderRepo    OrderRepository
	paymentRepo  PaymentRepository
	shareRepo    RevenueShareRepository
	txRepo       TransactionRepository
	outboxRepo   OutboxRepository
	accounts     *AccountUseCase
	transactions *TransactionUseCase
	revenue      *RevenueUseCase
	fulfillment  FulfillmentService
	idGen        IDGenerator
	metrics      MetricsRecorder
	logger       zerolog.Logger

	eagerMaxGeneration int
	fulfillmentTimeout time.Duration
}

// OrchestratorDeps groups the collaborators of OrchestratorUseCase.
type OrchestratorDeps struct {
	TxManager    TransactionManager
	Retrier      Retrier
	UserRepo     UserRepository
	OrderRepo    OrderRepository
	PaymentRepo  PaymentRepository
	ShareRepo    RevenueShareRepository
	TxRepo       TransactionRepository
	OutboxRepo   OutboxRepository
	Accounts     *AccountUseCase
	Transactions *TransactionUseCase
	Revenue      *RevenueUseCase
	Fulfillment  FulfillmentService
	IDGen        IDGenerator
	Metrics      MetricsRecorder
	Logger       zerolog.Logger

	EagerPayoutMaxGeneration int
	FulfillmentTimeout       time.Duration
}

// NewOrchestratorUseCase creates a new OrchestratorUseCase.
func NewOrchestratorUseCase(deps OrchestratorDeps) *OrchestratorUseCase {
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.EagerPayoutMaxGeneration <= 0 {
		deps.EagerPayoutMaxGeneration = DefaultEagerPayoutMaxGeneration
	}
	if deps.FulfillmentTimeout <= 0 {
		deps.FulfillmentTimeout = DefaultFulfillmentTimeout
	}

	return &OrchestratorUseCase{
		txManager:          deps.TxManager,
		retrier:            deps.Retrier,
		userRepo:           deps.UserRepo,
		orderRepo:          deps.OrderRepo,
		paymentRepo:        deps.PaymentRepo,
		shareRepo:          deps.ShareRepo,
		txRepo:             deps.TxRepo,
		outboxRepo:         deps.OutboxRepo,
		accounts:           deps.Accounts,
		transactions:       deps.Transactions,
		revenue:            deps.Revenue,
		fulfillment:        deps.Fulfillment,
		idGen:              deps.IDGen,
		metrics:            deps.Metrics,
		logger:             deps.Logger,
		eagerMaxGeneration: deps.EagerPayoutMaxGeneration,
		fulfillmentTimeout: deps.FulfillmentTimeout,
	}
}

// OrderRef is the order state reported back to callers.
type OrderRef struct {
	ID     string
	Status domain.OrderStatus
}

// FailedPayout records an eager payout that was rolled back on its own.
type FailedPayout struct {
	RevenueShareID string
	Error          string
}

// OrderPaymentResult is the outcome of ProcessOrderPayment.
type OrderPaymentResult struct {
	PurchaseTransaction *domain.Transaction
	RevenueShares       []*domain.RevenueShare
	PaidCommissions     []*PayoutResult
	FailedPayouts       []FailedPayout
	Fulfillment         *domain.FulfillmentResult
	Order               OrderRef
}

// ProcessOrderPayment runs the financial leg for a successful payment in one
// unit of work, then attempts fulfillment. A fulfillment failure leaves the
// order in processing and never unwinds the committed financial leg.
func (uc *OrchestratorUseCase) ProcessOrderPayment(ctx context.Context, paymentID string) (*OrderPaymentResult, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, err)
	}

	if !payment.IsSuccessful() {
		return nil, fmt.Errorf("%w: payment %s is %s", domain.ErrPaymentNotSuccessful, payment.ID, payment.Status)
	}

	var (
		result *OrderPaymentResult
		order  *domain.Order
	)
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, order, err = uc.processFinancialLeg(ctx, tx, payment)
		return err
	})
	if err != nil {
		uc.logger.Error().Err(err).
			Str("payment_id", payment.ID).
			Str("order_id", payment.OrderID).
			Msg("order payment processing failed")
		return nil, err
	}

	uc.metrics.OrderProcessed(domain.OrderStatusProcessing)
	for _, p := range result.PaidCommissions {
		uc.metrics.CommissionPaid(p.Share.Amount)
	}

	result.Fulfillment, result.Order.Status = uc.fulfill(ctx, order)

	return result, nil
}

func (uc *OrchestratorUseCase) processFinancialLeg(ctx context.Context, tx Transaction, payment *domain.Payment) (*OrderPaymentResult, *domain.Order, error) {
	order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, payment.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("order %s: %w", payment.OrderID, err)
	}

	if order.Status.IsProcessed() {
		return nil, nil, fmt.Errorf("%w: order %s is %s", domain.ErrOrderAlreadyProcessed, order.ID, order.Status)
	}

	now := time.Now().UTC()
	if err := order.Transition(domain.OrderStatusProcessing, now); err != nil {
		return nil, nil, fmt.Errorf("order %s from %s: %w", order.ID, order.Status, err)
	}

	currency := order.Currency
	if currency == "" {
		currency = uc.accounts.Currency()
	}

	customerWallet, err := uc.accounts.FindOrCreateWalletTx(ctx, tx, order.UserID, domain.WalletTypeMoney, currency)
	if err != nil {
		return nil, nil, err
	}

	system, err := uc.accounts.SystemAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}

	purchase, err := uc.transactions.CreateTransactionWithJournalTx(ctx, tx, CreateTransactionInput{
		UserID:    order.UserID,
		WalletID:  customerWallet.ID,
		Type:      domain.TransactionTypePurchase,
		ValueType: domain.ValueTypeMoney,
		Amount:    order.TotalAmount,
		Currency:  currency,
		Direction: domain.DirectionOutflow,
		Related:   domain.RelatedTo(domain.RelatedOrder, order.ID),
		Metadata:  purchaseMetadata(order, payment),
		Entries:   domain.TwoLegJournal(customerWallet.ID, system.Revenue.ID, order.TotalAmount, currency),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("book purchase for order %s: %w", order.ID, err)
	}

	if err := uc.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, now); err != nil {
		return nil, nil, fmt.Errorf("update order %s status: %w", order.ID, err)
	}

	if err := recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
		domain.AggregateTypeOrder, order.ID, domain.EventTypeOrderProcessing, domain.OrderPayload(order),
	); err != nil {
		return nil, nil, err
	}

	shares, err := uc.distribute(ctx, tx, order, purchase)
	if err != nil {
		return nil, nil, err
	}

	paid, failed, err := uc.payEager(ctx, tx, shares)
	if err != nil {
		return nil, nil, err
	}

	return &OrderPaymentResult{
		PurchaseTransaction: purchase,
		RevenueShares:       shares,
		PaidCommissions:     paid,
		FailedPayouts:       failed,
		Order:               OrderRef{ID: order.ID, Status: order.Status},
	}, order, nil
}

// distribute runs the revenue engine once per order item so each share can be
// traced to the item that produced it.
func (uc *OrchestratorUseCase) distribute(ctx context.Context, tx Transaction, order *domain.Order, purchase *domain.Transaction) ([]*domain.RevenueShare, error) {
	if len(order.Items) == 0 {
		return uc.revenue.DistributeGenerationRevenueTx(ctx, tx, DistributeInput{
			OriginUserID: order.UserID,
			Transaction:  purchase,
		})
	}

	var shares []*domain.RevenueShare
	for _, item := range order.Items {
		if !item.TotalPrice.IsPositive() {
			continue
		}

		itemShares, err := uc.revenue.DistributeGenerationRevenueTx(ctx, tx, DistributeInput{
			OriginUserID: order.UserID,
			Transaction:  purchase,
			BaseAmount:   item.TotalPrice,
			OrderItemID:  item.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("distribute revenue for order item %s: %w", item.ID, err)
		}
		shares = append(shares, itemShares...)
	}

	return shares, nil
}

// payEager settles shares of active recipients up to the eager generation. Each
// payout runs in its own savepoint; a failure is logged and rolls back only
// that payout.
func (uc *OrchestratorUseCase) payEager(ctx context.Context, tx Transaction, shares []*domain.RevenueShare) ([]*PayoutResult, []FailedPayout, error) {
	var (
		paid   []*PayoutResult
		failed []FailedPayout
	)

	for i, share := range shares {
		if share.GenerationLevel > uc.eagerMaxGeneration {
			continue
		}

		recipient, err := uc.userRepo.GetByID(ctx, share.RecipientID)
		if err != nil {
			return nil, nil, fmt.Errorf("recipient of revenue share %s: %w", share.ID, err)
		}
		if !recipient.Active {
			continue
		}

		var res *PayoutResult
		err = withSavepoint(ctx, tx, func(sp Transaction) error {
			var err error
			res, err = uc.revenue.PayRevenueShareTx(ctx, sp, share.ID, "")
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}

			uc.logger.Warn().Err(err).
				Str("revenue_share_id", share.ID).
				Str("recipient_id", share.RecipientID).
				Int("generation", share.GenerationLevel).
				Msg("eager payout failed, share left pending")
			uc.metrics.CommissionPayoutFailed(payoutFailureReason(err))

			failed = append(failed, FailedPayout{RevenueShareID: share.ID, Error: err.Error()})
			continue
		}

		shares[i] = res.Share
		paid = append(paid, res)
	}

	return paid, failed, nil
}

// fulfill calls the fulfillment collaborator outside any database transaction
// and promotes the order to completed on success.
func (uc *OrchestratorUseCase) fulfill(ctx context.Context, order *domain.Order) (*domain.FulfillmentResult, domain.OrderStatus) {
	result := uc.callFulfillment(ctx, order)
	if !result.Success {
		uc.metrics.FulfillmentFailed()
		uc.logger.Error().
			Str("order_id", order.ID).
			Str("error", result.Error).
			Msg("order fulfillment failed, order left in processing")
		return result, order.Status
	}

	status, err := uc.completeOrder(ctx, order.ID)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("order_id", order.ID).
			Msg("order fulfilled but could not be completed")
		return result, order.Status
	}

	uc.metrics.OrderProcessed(status)

	return result, status
}

func (uc *OrchestratorUseCase) callFulfillment(ctx context.Context, order *domain.Order) *domain.FulfillmentResult {
	if uc.fulfillment == nil {
		return &domain.FulfillmentResult{Success: true}
	}

	fctx, cancel := context.WithTimeout(ctx, uc.fulfillmentTimeout)
	defer cancel()

	result, err := uc.fulfillment.ProcessOrderFulfillment(fctx, order)
	if err != nil {
		return &domain.FulfillmentResult{Success: false, Error: err.Error()}
	}
	if result == nil {
		return &domain.FulfillmentResult{Success: false, Error: "fulfillment returned no result"}
	}

	return result
}

func (uc *OrchestratorUseCase) completeOrder(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := order.Transition(domain.OrderStatusCompleted, now); err != nil {
			return fmt.Errorf("order %s from %s: %w", order.ID, order.Status, err)
		}

		if err := uc.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, now); err != nil {
			return err
		}

		status = order.Status

		return recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeOrder, order.ID, domain.EventTypeOrderCompleted, domain.OrderPayload(order),
		)
	})

	return status, err
}

// RetryOrderFulfillment reruns fulfillment for an order stuck in processing.
func (uc *OrchestratorUseCase) RetryOrderFulfillment(ctx context.Context, orderID string) (*domain.FulfillmentResult, OrderRef, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, OrderRef{}, fmt.Errorf("order %s: %w", orderID, err)
	}

	if order.Status != domain.OrderStatusProcessing {
		return nil, OrderRef{}, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotAwaitingDelivery, order.ID, order.Status)
	}

	result, status := uc.fulfill(ctx, order)

	return result, OrderRef{ID: order.ID, Status: status}, nil
}

// CommissionResult is the outcome of one payout attempt in a sweep.
type CommissionResult struct {
	RevenueShareID string
	Success        bool
	TransactionID  string
	Amount         decimal.Decimal
	Error          string
}

// CommissionSweepResult aggregates a ProcessPendingCommissions run.
type CommissionSweepResult struct {
	Processed  int
	Successful int
	Failed     int
	Results    []CommissionResult
}

// ProcessPendingCommissions pays up to limit of the oldest pending shares. Every
// share is attempted independently and its outcome collected.
func (uc *OrchestratorUseCase) ProcessPendingCommissions(ctx context.Context, limit int) (*CommissionSweepResult, error) {
	if limit <= 0 {
		limit = DefaultSweepBatch
	}

	pending, err := uc.shareRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending revenue shares: %w", err)
	}

	out := &CommissionSweepResult{Results: make([]CommissionResult, 0, len(pending))}
	for _, share := range pending {
		res := CommissionResult{RevenueShareID: share.ID, Amount: share.Amount}

		paid, err := uc.revenue.PayRevenueShare(ctx, share.ID, "")
		if err != nil {
			res.Error = err.Error()
			out.Failed++
			uc.logger.Warn().Err(err).
				Str("revenue_share_id", share.ID).
				Msg("commission sweep payout failed")
		} else {
			res.Success = true
			res.TransactionID = paid.Transaction.ID
			out.Successful++
		}

		out.Results = append(out.Results, res)
		out.Processed++
	}

	uc.logger.Info().
		Int("processed", out.Processed).
		Int("successful", out.Successful).
		Int("failed", out.Failed).
		Msg("commission sweep finished")

	return out, nil
}

// FinancialSummary is the admin reporting view over a date window.
type FinancialSummary struct {
	TotalRevenue       decimal.Decimal
	TotalCommissions   decimal.Decimal
	PendingCommissions decimal.Decimal
	PlatformBalance    decimal.Decimal
	NetRevenue         decimal.Decimal
	From               *time.Time
	To                 *time.Time
}

// GetFinancialSummary aggregates completed purchases and payouts in the window,
// plus the current pending commissions and platform revenue balance.
func (uc *OrchestratorUseCase) GetFinancialSummary(ctx context.Context, from, to *time.Time) (*FinancialSummary, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: start date is after end date", domain.ErrValidation)
	}

	revenue, err := uc.txRepo.SumAmount(ctx, domain.TransactionTypePurchase, domain.TransactionStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}

	commissions, err := uc.txRepo.SumAmount(ctx, domain.TransactionTypeCommissionPayout, domain.TransactionStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("total commissions: %w", err)
	}

	pending, err := uc.shareRepo.SumAmount(ctx, domain.RevenueShareStatusPending, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("pending commissions: %w", err)
	}

	system, err := uc.accounts.SystemAccounts(ctx)
	if err != nil {
		return nil, err
	}

	platform, err := uc.accounts.GetBalance(ctx, system.Revenue.ID)
	if err != nil {
		return nil, fmt.Errorf("platform balance: %w", err)
	}

	return &FinancialSummary{
		TotalRevenue:       revenue,
		TotalCommissions:   commissions,
		PendingCommissions: pending,
		PlatformBalance:    platform.Balance,
		NetRevenue:         revenue.Sub(commissions),
		From:               from,
		To:                 to,
	}, nil
}

// OrderProcessingStatus reports an order with its commission totals.
type OrderProcessingStatus struct {
	Order       *domain.Order
	Commissions domain.CommissionTotals
}

// GetOrderProcessingStatus returns the order status, total and commission totals.
func (uc *OrchestratorUseCase) GetOrderProcessingStatus(ctx context.Context, orderID string) (*OrderProcessingStatus, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	totals, err := uc.shareRepo.TotalsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("commission totals for order %s: %w", orderID, err)
	}

	return &OrderProcessingStatus{Order: order, Commissions: totals}, nil
}

// CommissionHistoryInput is a paginated commission query for one recipient.
type CommissionHistoryInput struct {
	UserID  string
	Filter  domain.CommissionFilter
	Page    int
	PerPage int
}

// CommissionHistory is one page of a recipient's revenue shares.
type CommissionHistory struct {
	Shares  []*domain.RevenueShare
	Total   int
	Page    int
	PerPage int
}

// GetCommissionHistory lists a recipient's revenue shares, newest first.
func (uc *OrchestratorUseCase) GetCommissionHistory(ctx context.Context, input CommissionHistoryInput) (*CommissionHistory, error) {
	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	f := input.Filter
	if f.Status != "" && f.Status != domain.RevenueShareStatusPending && f.Status != domain.RevenueShareStatusPaid {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidFilter, f.Status)
	}
	if f.GenerationLevel < 0 {
		return nil, fmt.Errorf("%w: generation level %d", domain.ErrInvalidFilter, f.GenerationLevel)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: start date is after end date", domain.ErrInvalidFilter)
	}

	limit, offset := domain.ValidatePage(input.Page, input.PerPage)

	shares, total, err := uc.shareRepo.ListByRecipient(ctx, input.UserID, f, limit, offset)
	if err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	return &CommissionHistory{Shares: shares, Total: total, Page: page, PerPage: limit}, nil
}

func purchaseMetadata(order *domain.Order, payment *domain.Payment) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, map[string]any{
			"order_item_id": it.ID,
			"product_id":    it.ProductID,
			"vendor_id":     it.VendorID,
			"quantity":      it.Quantity,
			"unit_price":    it.UnitPrice.String(),
			"total_price":   it.TotalPrice.String(),
		})
	}

	return map[string]any{
		"order_id":   order.ID,
		"payment_id": payment.ID,
		"gateway":    payment.Gateway,
		"items":      items,
	}
}

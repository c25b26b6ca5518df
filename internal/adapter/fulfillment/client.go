package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/domain"
)

// Client calls an external fulfillment service over HTTP.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Token      string
	Logger     zerolog.Logger
}

type fulfillmentItem struct {
	OrderItemID string `json:"order_item_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
}

type fulfillmentRequest struct {
	OrderID string            `json:"order_id"`
	UserID  string            `json:"user_id"`
	Items   []fulfillmentItem `json:"items"`
}

type fulfillmentItemResult struct {
	OrderItemID string `json:"order_item_id"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
}

type fulfillmentResponse struct {
	Success bool                    `json:"success"`
	Items   []fulfillmentItemResult `json:"items"`
	Error   string                  `json:"error,omitempty"`
}

// NewClient creates a new Client.
func NewClient(cfg ClientConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{http: client, logger: cfg.Logger}
}

// ProcessOrderFulfillment submits the order for delivery. Transport failures
// and 5xx replies are errors; a 4xx reply or success=false in the body is a
// failed result.
func (c *Client) ProcessOrderFulfillment(ctx context.Context, order *domain.Order) (*domain.FulfillmentResult, error) {
	body := fulfillmentRequest{OrderID: order.ID, UserID: order.UserID}
	for _, item := range order.Items {
		body.Items = append(body.Items, fulfillmentItem{
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
		})
	}

	var out fulfillmentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/fulfillments")
	if err != nil {
		return nil, fmt.Errorf("fulfillment request for order %s: %w", order.ID, err)
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("fulfillment service returned %d for order %s", resp.StatusCode(), order.ID)
	}

	result := &domain.FulfillmentResult{Success: out.Success && !resp.IsError(), Error: out.Error}
	if resp.IsError() && result.Error == "" {
		result.Error = fmt.Sprintf("fulfillment rejected with status %d", resp.StatusCode())
	}
	for _, item := range out.Items {
		result.Items = append(result.Items, domain.FulfillmentItemResult{
			OrderItemID: item.OrderItemID,
			Success:     item.Success,
			Message:     item.Message,
		})
	}

	c.logger.Debug().
		Str("order_id", order.ID).
		Int("status", resp.StatusCode()).
		Bool("success", result.Success).
		Msg("fulfillment response")

	return result, nil
}

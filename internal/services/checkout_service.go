package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/adire/internal/models"
)

const orderNumberPrefix = "ADR"

// CheckoutStore is the persistence surface the checkout pipeline needs.
// Implemented by store.Store.
type CheckoutStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CountOrders(ctx context.Context) (int64, error)
	OrderByNumber(ctx context.Context, number string) (*models.Order, error)
	SetPaymentID(ctx context.Context, orderID uuid.UUID, reference string) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string, amount float64, day time.Time) (bool, error)
}

// PaymentGateway is the outbound gateway surface. Implemented by
// PaystackService.
type PaymentGateway interface {
	Configured() bool
	InitializeTransaction(ctx context.Context, req InitializeTransactionRequest) (*InitializeTransactionResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyTransactionResult, error)
	VerifySignature(body []byte, signature string) bool
}

// CheckoutService owns order creation and both payment confirmation paths.
type CheckoutService struct {
	store       CheckoutStore
	gateway     PaymentGateway
	callbackURL string
}

// NewCheckoutService constructs a CheckoutService. callbackURL is the
// absolute URL of the redirect verification endpoint handed to the gateway.
func NewCheckoutService(store CheckoutStore, gateway PaymentGateway, callbackURL string) *CheckoutService {
	return &CheckoutService{
		store:       store,
		gateway:     gateway,
		callbackURL: callbackURL,
	}
}

type CheckoutCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CheckoutAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type CheckoutItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Image     string  `json:"image"`
}

// CheckoutRequest is a cart submission. Monetary values are in major
// currency units (naira).
type CheckoutRequest struct {
	Customer        CheckoutCustomer `json:"customer"`
	ShippingAddress CheckoutAddress  `json:"shippingAddress"`
	Items           []CheckoutItem   `json:"items"`
	Subtotal        float64          `json:"subtotal"`
	Shipping        float64          `json:"shipping"`
	Total           float64          `json:"total"`
}

// CheckoutResult is returned to the storefront. AuthorizationURL is empty in
// degraded mode, in which case Message explains why.
type CheckoutResult struct {
	OrderID          uuid.UUID `json:"orderId"`
	OrderNumber      string    `json:"orderNumber"`
	AuthorizationURL string    `json:"authorizationUrl,omitempty"`
	Message          string    `json:"message,omitempty"`
}

// Initiate validates the cart submission, creates a pending order and asks
// the gateway for a hosted payment session. The order row survives gateway
// failures on purpose: an abandoned checkout is an auditable record, not
// something to roll back.
func (s *CheckoutService) Initiate(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.Customer.Name == "" || req.Customer.Email == "" || len(req.Items) == 0 {
		return nil, models.ErrMissingFields
	}

	// Order numbers are minted from the historical order count. Two
	// concurrent checkouts can read the same count; the unique index on
	// order_number turns that into an insert error rather than a duplicate.
	count, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	orderNumber := fmt.Sprintf("%s-%d-%04d", orderNumberPrefix, time.Now().Year(), count+1)

	order := models.Order{
		OrderNumber:        orderNumber,
		CustomerEmail:      req.Customer.Email,
		CustomerName:       req.Customer.Name,
		ShippingStreet:     req.ShippingAddress.Street,
		ShippingCity:       req.ShippingAddress.City,
		ShippingState:      req.ShippingAddress.State,
		ShippingCountry:    req.ShippingAddress.Country,
		ShippingPostalCode: req.ShippingAddress.PostalCode,
		Subtotal:           req.Subtotal,
		Shipping:           req.Shipping,
		Total:              req.Subtotal + req.Shipping,
		Status:             models.OrderStatusPending,
	}

	for _, item := range req.Items {
		snapshot := models.OrderItem{
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
			Size:        item.Size,
			Color:       item.Color,
			Image:       item.Image,
		}
		if item.ProductID != "" {
			if id, err := uuid.Parse(item.ProductID); err == nil {
				snapshot.ProductID = &id
			}
		}
		order.Items = append(order.Items, snapshot)
	}

	if err := s.store.CreateOrder(ctx, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if !s.gateway.Configured() {
		log.Printf("[Checkout] gateway not configured, order %s created without payment", order.OrderNumber)
		return &CheckoutResult{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Message:     "Order created (payment not configured)",
		}, nil
	}

	metadata := TransactionMetadata{
		OrderID:      order.ID.String(),
		OrderNumber:  order.OrderNumber,
		CustomerName: req.Customer.Name,
	}
	for _, item := range req.Items {
		metadata.Items = append(metadata.Items, MetadataItem{Name: item.Name, Quantity: item.Quantity})
	}

	session, err := s.gateway.InitializeTransaction(ctx, InitializeTransactionRequest{
		Email:       req.Customer.Email,
		AmountKobo:  int64(math.Round(order.Total * 100)),
		Reference:   order.OrderNumber,
		CallbackURL: s.callbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		log.Printf("[Checkout] payment initialization failed for order %s: %v", order.OrderNumber, err)
		return nil, err
	}

	if err := s.store.SetPaymentID(ctx, order.ID, session.Reference); err != nil {
		return nil, fmt.Errorf("attach payment reference: %w", err)
	}

	return &CheckoutResult{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		AuthorizationURL: session.AuthorizationURL,
	}, nil
}

// ConfirmReference handles the browser returning from the gateway. It
// verifies the transaction server-side and applies the paid transition,
// returning the confirmed order for the redirect target.
func (s *CheckoutService) ConfirmReference(ctx context.Context, reference string) (*models.Order, error) {
	if !s.gateway.Configured() {
		// Degraded mode for local operation: trust the reference, skip
		// verification and analytics.
		order, err := s.store.OrderByNumber(ctx, reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrOrderNotFound
			}
			return nil, err
		}
		if err := s.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
			return nil, err
		}
		order.Status = models.OrderStatusPaid
		return order, nil
	}

	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		log.Printf("[Checkout] verification call failed for reference %s: %v", reference, err)
		return nil, models.ErrVerificationFailed
	}

	if result.Status != "success" {
		return nil, models.ErrPaymentFailed
	}

	order, err := s.store.OrderByNumber(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.markPaid(ctx, order, result.Reference, order.Total); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusPaid

	return order, nil
}

// WebhookEvent is a parsed gateway event. The signature must already have
// been verified against the raw body before this is trusted.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// ProcessWebhookEvent applies a verified gateway event. Unknown references
// and unhandled event types are acknowledged without state changes; the
// caller is expected to respond 200 regardless of the returned error.
func (s *CheckoutService) ProcessWebhookEvent(ctx context.Context, event WebhookEvent) error {
	switch event.Event {
	case "charge.success":
		order, err := s.store.OrderByNumber(ctx, event.Data.Reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[Webhook] charge.success for unknown reference %s", event.Data.Reference)
				return nil
			}
			return err
		}
		// Webhook amounts arrive in kobo.
		return s.markPaid(ctx, order, event.Data.Reference, float64(event.Data.Amount)/100)

	case "charge.failed":
		order, err := s.store.OrderByNumber(ctx, event.Data.Reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[Webhook] charge.failed for unknown reference %s", event.Data.Reference)
				return nil
			}
			return err
		}
		log.Printf("[Webhook] order %s marked as failed", order.OrderNumber)
		return s.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusFailed)

	default:
		log.Printf("[Webhook] unhandled event: %s", event.Event)
		return nil
	}
}

// markPaid applies the shared paid transition: at most one status flip and
// one analytics increment per order, no matter how many confirmations arrive.
func (s *CheckoutService) markPaid(ctx context.Context, order *models.Order, paymentID string, amount float64) error {
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	applied, err := s.store.MarkOrderPaid(ctx, order.ID, paymentID, amount, day)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("[Checkout] order %s already paid, skipping", order.OrderNumber)
	}
	return nil
}

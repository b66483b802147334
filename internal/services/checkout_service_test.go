package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/adire/internal/models"
)

type mockCheckoutStore struct {
	mock.Mock
}

func (m *mockCheckoutStore) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil && order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockCheckoutStore) CountOrders(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCheckoutStore) OrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	args := m.Called(ctx, number)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCheckoutStore) SetPaymentID(ctx context.Context, orderID uuid.UUID, reference string) error {
	args := m.Called(ctx, orderID, reference)
	return args.Error(0)
}

func (m *mockCheckoutStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *mockCheckoutStore) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string, amount float64, day time.Time) (bool, error) {
	args := m.Called(ctx, orderID, paymentID, amount, day)
	return args.Bool(0), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockGateway) InitializeTransaction(ctx context.Context, req InitializeTransactionRequest) (*InitializeTransactionResult, error) {
	args := m.Called(ctx, req)
	if result := args.Get(0); result != nil {
		return result.(*InitializeTransactionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) VerifyTransaction(ctx context.Context, reference string) (*VerifyTransactionResult, error) {
	args := m.Called(ctx, reference)
	if result := args.Get(0); result != nil {
		return result.(*VerifyTransactionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) VerifySignature(body []byte, signature string) bool {
	return m.Called(body, signature).Bool(0)
}

func validCheckoutRequest() CheckoutRequest {
	return CheckoutRequest{
		Customer: CheckoutCustomer{Name: "Ada Obi", Email: "ada@example.com"},
		ShippingAddress: CheckoutAddress{
			Street:  "12 Allen Avenue",
			City:    "Lagos",
			State:   "Lagos",
			Country: "Nigeria",
		},
		Items: []CheckoutItem{
			{ProductID: uuid.NewString(), Name: "Indigo Wrapper", Price: 15000, Quantity: 1},
			{Name: "Adire Scarf", Price: 3000, Quantity: 1},
		},
		Subtotal: 18000,
		Shipping: 500,
		Total:    18500,
	}
}

func TestInitiate_Validation(t *testing.T) {
	svc := NewCheckoutService(new(mockCheckoutStore), new(mockGateway), "https://shop.example.com/api/checkout/verify")

	tests := []struct {
		name   string
		mutate func(*CheckoutRequest)
	}{
		{"missing name", func(r *CheckoutRequest) { r.Customer.Name = "" }},
		{"missing email", func(r *CheckoutRequest) { r.Customer.Email = "" }},
		{"empty cart", func(r *CheckoutRequest) { r.Items = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCheckoutRequest()
			tt.mutate(&req)

			_, err := svc.Initiate(context.Background(), req)
			assert.ErrorIs(t, err, models.ErrMissingFields)
		})
	}
}

func TestInitiate_CreatesSessionAndAttachesReference(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "https://shop.example.com/api/checkout/verify")

	var created *models.Order
	store.On("CountOrders", mock.Anything).Return(int64(41), nil)
	store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.Order) }).
		Return(nil)
	store.On("SetPaymentID", mock.Anything, mock.Anything, "ADR-2026-0042").Return(nil)

	gateway.On("Configured").Return(true)
	gateway.On("InitializeTransaction", mock.Anything, mock.MatchedBy(func(req InitializeTransactionRequest) bool {
		return req.Email == "ada@example.com" &&
			req.AmountKobo == 1850000 &&
			req.CallbackURL == "https://shop.example.com/api/checkout/verify" &&
			len(req.Metadata.Items) == 2
	})).Return(&InitializeTransactionResult{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		Reference:        "ADR-2026-0042",
	}, nil)

	result, err := svc.Initiate(context.Background(), validCheckoutRequest())
	require.NoError(t, err)

	expectedNumber := fmt.Sprintf("ADR-%d-0042", time.Now().Year())
	assert.Equal(t, expectedNumber, result.OrderNumber)
	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Empty(t, result.Message)

	require.NotNil(t, created)
	assert.Equal(t, expectedNumber, created.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Equal(t, 18500.0, created.Total)
	require.Len(t, created.Items, 2)
	assert.NotNil(t, created.Items[0].ProductID)
	assert.Nil(t, created.Items[1].ProductID)
	assert.Equal(t, "Indigo Wrapper", created.Items[0].ProductName)

	store.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestInitiate_TotalRecomputedFromParts(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "https://shop.example.com/api/checkout/verify")

	var created *models.Order
	store.On("CountOrders", mock.Anything).Return(int64(0), nil)
	store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.Order) }).
		Return(nil)
	gateway.On("Configured").Return(false)

	req := validCheckoutRequest()
	req.Total = 999999 // client-supplied total is not trusted

	_, err := svc.Initiate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 18500.0, created.Total)
}

func TestInitiate_DegradedMode(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "https://shop.example.com/api/checkout/verify")

	store.On("CountOrders", mock.Anything).Return(int64(0), nil)
	store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	gateway.On("Configured").Return(false)

	result, err := svc.Initiate(context.Background(), validCheckoutRequest())
	require.NoError(t, err)

	assert.Empty(t, result.AuthorizationURL)
	assert.Equal(t, "Order created (payment not configured)", result.Message)

	gateway.AssertNotCalled(t, "InitializeTransaction", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetPaymentID", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiate_GatewayFailureKeepsOrder(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "https://shop.example.com/api/checkout/verify")

	store.On("CountOrders", mock.Anything).Return(int64(0), nil)
	store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	gateway.On("Configured").Return(true)
	gateway.On("InitializeTransaction", mock.Anything, mock.Anything).
		Return(nil, &GatewayError{StatusCode: 400, Message: "Invalid amount"})

	_, err := svc.Initiate(context.Background(), validCheckoutRequest())

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)

	// Order was created before the gateway call and is never rolled back.
	store.AssertCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetPaymentID", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmReference_Success(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "")

	orderID := uuid.New()
	order := &models.Order{
		BaseModel:   models.BaseModel{ID: orderID},
		OrderNumber: "ADR-2026-0042",
		Total:       18500,
		Status:      models.OrderStatusPending,
	}

	gateway.On("Configured").Return(true)
	gateway.On("VerifyTransaction", mock.Anything, "ADR-2026-0042").
		Return(&VerifyTransactionResult{Status: "success", Reference: "ADR-2026-0042", Amount: 1850000}, nil)
	store.On("OrderByNumber", mock.Anything, "ADR-2026-0042").Return(order, nil)
	store.On("MarkOrderPaid", mock.Anything, orderID, "ADR-2026-0042", 18500.0, mock.AnythingOfType("time.Time")).
		Return(true, nil)

	confirmed, err := svc.ConfirmReference(context.Background(), "ADR-2026-0042")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, confirmed.Status)

	store.AssertExpectations(t)
}

func TestConfirmReference_AlreadyPaidIsStillSuccess(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "")

	orderID := uuid.New()
	order := &models.Order{
		BaseModel:   models.BaseModel{ID: orderID},
		OrderNumber: "ADR-2026-0042",
		Total:       18500,
		Status:      models.OrderStatusPaid,
	}

	gateway.On("Configured").Return(true)
	gateway.On("VerifyTransaction", mock.Anything, "ADR-2026-0042").
		Return(&VerifyTransactionResult{Status: "success", Reference: "ADR-2026-0042"}, nil)
	store.On("OrderByNumber", mock.Anything, "ADR-2026-0042").Return(order, nil)
	store.On("MarkOrderPaid", mock.Anything, orderID, "ADR-2026-0042", 18500.0, mock.AnythingOfType("time.Time")).
		Return(false, nil)

	confirmed, err := svc.ConfirmReference(context.Background(), "ADR-2026-0042")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, confirmed.Status)
}

func TestConfirmReference_Failures(t *testing.T) {
	t.Run("verification call fails", func(t *testing.T) {
		store := new(mockCheckoutStore)
		gateway := new(mockGateway)
		svc := NewCheckoutService(store, gateway, "")

		gateway.On("Configured").Return(true)
		gateway.On("VerifyTransaction", mock.Anything, "ref").
			Return(nil, errors.New("connection refused"))

		_, err := svc.ConfirmReference(context.Background(), "ref")
		assert.ErrorIs(t, err, models.ErrVerificationFailed)
	})

	t.Run("transaction not successful", func(t *testing.T) {
		store := new(mockCheckoutStore)
		gateway := new(mockGateway)
		svc := NewCheckoutService(store, gateway, "")

		gateway.On("Configured").Return(true)
		gateway.On("VerifyTransaction", mock.Anything, "ref").
			Return(&VerifyTransactionResult{Status: "abandoned"}, nil)

		_, err := svc.ConfirmReference(context.Background(), "ref")
		assert.ErrorIs(t, err, models.ErrPaymentFailed)
	})

	t.Run("order not found", func(t *testing.T) {
		store := new(mockCheckoutStore)
		gateway := new(mockGateway)
		svc := NewCheckoutService(store, gateway, "")

		gateway.On("Configured").Return(true)
		gateway.On("VerifyTransaction", mock.Anything, "ref").
			Return(&VerifyTransactionResult{Status: "success", Reference: "ref"}, nil)
		store.On("OrderByNumber", mock.Anything, "ref").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.ConfirmReference(context.Background(), "ref")
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
	})
}

func TestConfirmReference_DegradedMode(t *testing.T) {
	store := new(mockCheckoutStore)
	gateway := new(mockGateway)
	svc := NewCheckoutService(store, gateway, "")

	orderID := uuid.New()
	order := &models.Order{
		BaseModel:   models.BaseModel{ID: orderID},
		OrderNumber: "ADR-2026-0001",
		Status:      models.OrderStatusPending,
	}

	gateway.On("Configured").Return(false)
	store.On("OrderByNumber", mock.Anything, "ADR-2026-0001").Return(order, nil)
	store.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusPaid).Return(nil)

	confirmed, err := svc.ConfirmReference(context.Background(), "ADR-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, confirmed.Status)

	// No verification and no analytics in degraded mode.
	gateway.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookEvent_ChargeSuccess(t *testing.T) {
	store := new(mockCheckoutStore)
	svc := NewCheckoutService(store, new(mockGateway), "")

	orderID := uuid.New()
	order := &models.Order{
		BaseModel:   models.BaseModel{ID: orderID},
		OrderNumber: "ADR-2026-0042",
		Status:      models.OrderStatusPending,
	}

	store.On("OrderByNumber", mock.Anything, "ADR-2026-0042").Return(order, nil)
	store.On("MarkOrderPaid", mock.Anything, orderID, "ADR-2026-0042", 18500.0, mock.AnythingOfType("time.Time")).
		Return(true, nil)

	err := svc.ProcessWebhookEvent(context.Background(), WebhookEvent{
		Event: "charge.success",
		Data:  WebhookEventData{Reference: "ADR-2026-0042", Amount: 1850000, Status: "success"},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProcessWebhookEvent_ChargeFailed(t *testing.T) {
	store := new(mockCheckoutStore)
	svc := NewCheckoutService(store, new(mockGateway), "")

	orderID := uuid.New()
	order := &models.Order{
		BaseModel:   models.BaseModel{ID: orderID},
		OrderNumber: "ADR-2026-0042",
	}

	store.On("OrderByNumber", mock.Anything, "ADR-2026-0042").Return(order, nil)
	store.On("UpdateOrderStatus", mock.Anything, orderID, models.OrderStatusFailed).Return(nil)

	err := svc.ProcessWebhookEvent(context.Background(), WebhookEvent{
		Event: "charge.failed",
		Data:  WebhookEventData{Reference: "ADR-2026-0042"},
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProcessWebhookEvent_UnknownReference(t *testing.T) {
	store := new(mockCheckoutStore)
	svc := NewCheckoutService(store, new(mockGateway), "")

	store.On("OrderByNumber", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	err := svc.ProcessWebhookEvent(context.Background(), WebhookEvent{
		Event: "charge.success",
		Data:  WebhookEventData{Reference: "missing"},
	})
	assert.NoError(t, err)
	store.AssertNotCalled(t, "MarkOrderPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessWebhookEvent_UnhandledEvent(t *testing.T) {
	store := new(mockCheckoutStore)
	svc := NewCheckoutService(store, new(mockGateway), "")

	err := svc.ProcessWebhookEvent(context.Background(), WebhookEvent{Event: "transfer.success"})
	assert.NoError(t, err)
	store.AssertNotCalled(t, "OrderByNumber", mock.Anything, mock.Anything)
}

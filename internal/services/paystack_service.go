package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/adire/internal/models"
)

var paystackHTTPClient = &http.Client{Timeout: 15 * time.Second}

// PaystackConfig holds Paystack API credentials and options.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
}

// PaystackService talks to the Paystack transaction API.
type PaystackService struct {
	cfg PaystackConfig
}

// NewPaystackService constructs a PaystackService, applying defaults.
func NewPaystackService(cfg PaystackConfig) *PaystackService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PaystackService{cfg: cfg}
}

// Configured reports whether a secret key is present. Without one the
// service runs in degraded mode and no gateway calls are made.
func (s *PaystackService) Configured() bool {
	return s.cfg.SecretKey != ""
}

// GatewayError is a failure reported by Paystack itself, as opposed to a
// transport error reaching it.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.StatusCode)
}

// MetadataItem is the redacted line-item view sent to the gateway: name and
// quantity only, no prices and no PII beyond the customer name.
type MetadataItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TransactionMetadata is attached to the hosted payment session.
type TransactionMetadata struct {
	OrderID      string         `json:"orderId"`
	OrderNumber  string         `json:"orderNumber"`
	CustomerName string         `json:"customerName"`
	Items        []MetadataItem `json:"items"`
}

// InitializeTransactionRequest describes a hosted payment session to create.
// AmountKobo is in the gateway's minor currency unit.
type InitializeTransactionRequest struct {
	Email       string
	AmountKobo  int64
	Reference   string
	CallbackURL string
	Metadata    TransactionMetadata
}

// InitializeTransactionResult is the created session.
type InitializeTransactionResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyTransactionResult is the gateway's view of a transaction.
type VerifyTransactionResult struct {
	Status    string
	Reference string
	Amount    int64
}

type paystackInitializePayload struct {
	Email       string              `json:"email"`
	Amount      int64               `json:"amount"`
	Currency    string              `json:"currency"`
	Reference   string              `json:"reference"`
	CallbackURL string              `json:"callback_url"`
	Metadata    TransactionMetadata `json:"metadata"`
}

type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// InitializeTransaction creates a hosted payment session for the given
// reference and returns the authorization URL the customer is sent to.
func (s *PaystackService) InitializeTransaction(ctx context.Context, req InitializeTransactionRequest) (*InitializeTransactionResult, error) {
	if !s.Configured() {
		return nil, models.ErrGatewayNotConfigured
	}

	payload, err := json.Marshal(paystackInitializePayload{
		Email:       req.Email,
		Amount:      req.AmountKobo,
		Currency:    s.cfg.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("paystack initialize marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("paystack initialize request build: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)

	resp, err := paystackHTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var initResp paystackInitializeResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return nil, fmt.Errorf("paystack initialize unmarshal: %w", err)
	}

	if !initResp.Status {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: initResp.Message}
	}

	return &InitializeTransactionResult{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

// VerifyTransaction asks the gateway for the state of a transaction by
// reference. The returned amount is in minor units.
func (s *PaystackService) VerifyTransaction(ctx context.Context, reference string) (*VerifyTransactionResult, error) {
	if !s.Configured() {
		return nil, models.ErrGatewayNotConfigured
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request build: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)

	resp, err := paystackHTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var verifyResp paystackVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("paystack verify unmarshal: %w", err)
	}

	if !verifyResp.Status {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: verifyResp.Message}
	}

	return &VerifyTransactionResult{
		Status:    verifyResp.Data.Status,
		Reference: verifyResp.Data.Reference,
		Amount:    verifyResp.Data.Amount,
	}, nil
}

// VerifySignature checks the x-paystack-signature header against an
// HMAC-SHA512 of the exact raw webhook body. It must run before the body is
// parsed as trusted data.
func (s *PaystackService) VerifySignature(body []byte, signature string) bool {
	if !s.Configured() || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(s.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

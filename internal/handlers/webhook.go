package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/adire/internal/services"
)

// WebhookVerifier authenticates raw webhook payloads.
type WebhookVerifier interface {
	Configured() bool
	VerifySignature(body []byte, signature string) bool
}

// WebhookProcessor applies verified gateway events.
type WebhookProcessor interface {
	ProcessWebhookEvent(ctx context.Context, event services.WebhookEvent) error
}

// WebhookHandler receives asynchronous payment notifications from Paystack.
type WebhookHandler struct {
	verifier WebhookVerifier
	svc      WebhookProcessor
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(verifier WebhookVerifier, svc WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, svc: svc}
}

// Paystack handles POSTed gateway events. The signature check runs against
// the exact raw body before anything in it is trusted. After authentication
// every outcome is acknowledged with 200 so the gateway does not retry.
func (h *WebhookHandler) Paystack(c *fiber.Ctx) error {
	if !h.verifier.Configured() {
		log.Println("[Webhook] PAYSTACK_SECRET_KEY not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Not configured"})
	}

	body := append([]byte(nil), c.Body()...)
	signature := c.Get("x-paystack-signature")

	if !h.verifier.VerifySignature(body, signature) {
		log.Println("[Webhook] invalid Paystack signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[Webhook] failed to parse event: %v", err)
		return c.JSON(fiber.Map{"received": true})
	}

	if err := h.svc.ProcessWebhookEvent(c.UserContext(), event); err != nil {
		// Swallowed on purpose: a non-200 here triggers gateway retries.
		log.Printf("[Webhook] processing failed for event %s reference %s: %v",
			event.Event, event.Data.Reference, err)
	}

	return c.JSON(fiber.Map{"received": true})
}

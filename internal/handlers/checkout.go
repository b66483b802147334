package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/adire/internal/models"
	"github.com/example/adire/internal/services"
)

// CheckoutProcessor is the service surface the checkout endpoints need.
type CheckoutProcessor interface {
	Initiate(ctx context.Context, req services.CheckoutRequest) (*services.CheckoutResult, error)
	ConfirmReference(ctx context.Context, reference string) (*models.Order, error)
}

// CheckoutHandler exposes checkout initiation and redirect verification.
type CheckoutHandler struct {
	svc CheckoutProcessor
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(svc CheckoutProcessor) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Initiate creates a pending order and a hosted payment session.
func (h *CheckoutHandler) Initiate(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Initiate(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, models.ErrMissingFields) {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
		}
		var gatewayErr *services.GatewayError
		if errors.As(err, &gatewayErr) {
			// The pending order is retained for reconciliation.
			return fiber.NewError(fiber.StatusInternalServerError, "Payment initialization failed. Please try again.")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process checkout")
	}

	return c.JSON(result)
}

// Verify is the gateway callback target: the customer's browser lands here
// after paying. Outcomes become redirects, never raw errors.
func (h *CheckoutHandler) Verify(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		// Paystack also sends the reference under its legacy name.
		reference = c.Query("trxref")
	}
	if reference == "" {
		return c.Redirect("/cart?error=missing_reference")
	}

	order, err := h.svc.ConfirmReference(c.UserContext(), reference)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			return c.Redirect("/cart?error=order_not_found")
		case errors.Is(err, models.ErrPaymentFailed):
			return c.Redirect("/cart?error=payment_failed")
		default:
			return c.Redirect("/cart?error=verification_failed")
		}
	}

	return c.Redirect("/order-confirmation/" + order.ID.String())
}

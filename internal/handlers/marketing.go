package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/adire/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MarketingHandler manages newsletter signups and contact messages.
type MarketingHandler struct {
	db *gorm.DB
}

// NewMarketingHandler constructs MarketingHandler.
func NewMarketingHandler(db *gorm.DB) *MarketingHandler {
	return &MarketingHandler{db: db}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter list. Duplicates are a no-op.
func (h *MarketingHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}
	if !emailPattern.MatchString(req.Email) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email address")
	}

	subscriber := models.Subscriber{Email: strings.ToLower(req.Email)}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&subscriber).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Subscribed successfully!"})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Contact stores a contact-form message.
func (h *MarketingHandler) Contact(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "all fields are required")
	}
	if !emailPattern.MatchString(req.Email) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email address")
	}

	message := models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Message: strings.TrimSpace(req.Message),
	}

	if err := h.db.Create(&message).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Message sent successfully! We'll get back to you soon."})
}

package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/adire/internal/models"
	"github.com/example/adire/internal/store"
	"github.com/example/adire/internal/utils"
)

// Statuses an admin may set by hand. paid and failed are owned by the
// payment pipeline.
var adminOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// AdminHandler manages the back-office endpoints.
type AdminHandler struct {
	db    *gorm.DB
	store *store.Store
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db, store: store.New(db)}
}

// ListOrders returns all orders, optionally filtered by status.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := strings.TrimSpace(c.Query("status")); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus applies an admin-driven status change.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}
	if !adminOrderStatuses[status] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status value")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if err := h.db.Model(&order).Update("status", status).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type customerSummary struct {
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	TotalOrders   int       `json:"total_orders"`
	TotalSpent    float64   `json:"total_spent"`
	LastOrderDate time.Time `json:"last_order_date"`
}

// ListCustomers aggregates the customer view from order history. There is no
// customer table; buyers are identified by email.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Order("created_at desc").Find(&orders).Error; err != nil {
		return err
	}

	byEmail := make(map[string]*customerSummary)
	ordered := make([]*customerSummary, 0)

	for _, order := range orders {
		email := strings.ToLower(order.CustomerEmail)
		existing, ok := byEmail[email]
		if !ok {
			existing = &customerSummary{
				Email:         order.CustomerEmail,
				Name:          order.CustomerName,
				LastOrderDate: order.CreatedAt,
			}
			byEmail[email] = existing
			ordered = append(ordered, existing)
		}
		existing.TotalOrders++
		existing.TotalSpent += order.Total
		if order.CreatedAt.After(existing.LastOrderDate) {
			existing.Name = order.CustomerName
			existing.LastOrderDate = order.CreatedAt
		}
	}

	customers := ordered
	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		filtered := make([]*customerSummary, 0, len(customers))
		for _, cust := range customers {
			if strings.Contains(strings.ToLower(cust.Name), search) ||
				strings.Contains(strings.ToLower(cust.Email), search) {
				filtered = append(filtered, cust)
			}
		}
		customers = filtered
	}

	var totalRevenue float64
	repeatCustomers := 0
	for _, cust := range customers {
		totalRevenue += cust.TotalSpent
		if cust.TotalOrders > 1 {
			repeatCustomers++
		}
	}

	averageOrderValue := 0.0
	if len(orders) > 0 {
		averageOrderValue = totalRevenue / float64(len(orders))
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"customers": customers,
		"summary": fiber.Map{
			"total_customers":     len(customers),
			"total_revenue":       totalRevenue,
			"average_order_value": averageOrderValue,
			"repeat_customers":    repeatCustomers,
		},
	})
}

// AnalyticsOverview returns aggregate dashboard metrics.
func (h *AdminHandler) AnalyticsOverview(c *fiber.Ctx) error {
	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var deliveredOrders int64
	if err := h.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Count(&deliveredOrders).Error; err != nil {
		return err
	}

	averageOrderValue := 0.0
	conversionRate := 0.0
	if totalOrders > 0 {
		averageOrderValue = totalRevenue / float64(totalOrders)
		conversionRate = float64(deliveredOrders) / float64(totalOrders) * 100
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_revenue":       totalRevenue,
			"total_orders":        totalOrders,
			"average_order_value": averageOrderValue,
			"conversion_rate":     conversionRate,
		},
	})
}

// RevenueSeries returns daily revenue rows for the dashboard chart.
func (h *AdminHandler) RevenueSeries(c *fiber.Ctx) error {
	days, err := h.store.RevenueSeries(c.UserContext(), 30)
	if err != nil {
		return err
	}

	series := make([]fiber.Map, 0, len(days))
	for _, day := range days {
		series = append(series, fiber.Map{
			"date":    day.Date.Format("2006-01-02"),
			"revenue": day.Revenue,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": series})
}

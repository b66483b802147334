package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/adire/internal/models"
)

// CreateOrder persists a new order together with its item snapshots.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// CountOrders returns the total number of orders ever created.
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// OrderByID loads an order with its items.
func (s *Store) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderByNumber loads an order by its business key.
func (s *Store) OrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "order_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// SetPaymentID attaches the gateway transaction reference to an order.
func (s *Store) SetPaymentID(ctx context.Context, orderID uuid.UUID, reference string) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_id", reference).Error
}

// UpdateOrderStatus sets the order status unconditionally.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

// MarkOrderPaid performs the paid transition: it flips the order to paid and
// records the sale in the daily analytics row, in one transaction. The status
// update is conditional on the order not already being paid, and the analytics
// increment only happens when that update changed a row, so the redirect
// callback and the webhook can both fire for the same order without
// double-counting. Returns whether the transition was applied.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentID string, amount float64, day time.Time) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", orderID, models.OrderStatusPaid).
			Updates(map[string]any{
				"status":     models.OrderStatusPaid,
				"payment_id": paymentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		row := models.AnalyticsDay{
			Date:    day,
			Revenue: amount,
			Orders:  1,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"revenue":    gorm.Expr("analytics_days.revenue + ?", amount),
				"orders":     gorm.Expr("analytics_days.orders + 1"),
				"updated_at": time.Now(),
			}),
		}).Create(&row).Error
	})
	return applied, err
}

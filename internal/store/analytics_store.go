package store

import (
	"context"

	"github.com/example/adire/internal/models"
)

// RevenueSeries returns up to limit daily analytics rows, oldest first.
func (s *Store) RevenueSeries(ctx context.Context, limit int) ([]models.AnalyticsDay, error) {
	var days []models.AnalyticsDay
	if err := s.db.WithContext(ctx).
		Order("date asc").
		Limit(limit).
		Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

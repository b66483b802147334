package models

import "time"

// AnalyticsDay accumulates revenue and order counts per calendar day.
// Date is truncated to local midnight and is the upsert key.
type AnalyticsDay struct {
	BaseModel
	Date     time.Time `gorm:"uniqueIndex" json:"date"`
	Revenue  float64   `json:"revenue"`
	Orders   int       `json:"orders"`
	Visitors int       `json:"visitors"`
}

package models

import "github.com/lib/pq"

type Category struct {
	BaseModel
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Product struct {
	BaseModel
	Slug        string         `gorm:"uniqueIndex" json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Category    string         `gorm:"index" json:"category"`
	Sizes       pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Colors      pq.StringArray `gorm:"type:text[]" json:"colors"`
	Stock       int            `json:"stock"`
	Featured    bool           `json:"featured"`
}

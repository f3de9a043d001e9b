// Package domain contains core types for the plan catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan is a purchasable subscription pack. Subscriptions reference plans
// by SKU and snapshot nothing else, so pricing edits never rewrite
// history.
type Plan struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU             string       `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	Description     string       `gorm:"type:text" json:"description"`
	PriceMinorUnits int64        `gorm:"column:price_minor_units;not null" json:"priceMinorUnits"`
	Currency        string       `gorm:"type:text;not null" json:"currency"`
	ValidityMonths  int          `gorm:"column:validity_months;not null" json:"validityMonths"`
	IsActive        bool         `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

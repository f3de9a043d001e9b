// Package domain contains core types for customer profiles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is the profile a subscription belongs to. Each customer maps
// 1:1 onto a customer-role account.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Phone     string       `gorm:"type:text" json:"phone"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Account, error)
}

// Package seed bootstraps the default admin account so a fresh deployment
// has a working console login.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
	"github.com/smallbiznis/entitle/internal/account/password"
	"gorm.io/gorm"
)

// EnsureAdmin creates the bootstrap admin account if no account with the
// given email exists. Idempotent across restarts. Seeding is skipped when no
// bootstrap password is configured.
func EnsureAdmin(db *gorm.DB, email, plainPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account accountdomain.Account
		err := tx.WithContext(ctx).Where("email = ?", email).First(&account).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		account = accountdomain.Account{
			ID:           node.Generate(),
			Email:        email,
			PasswordHash: hashed,
			Role:         accountdomain.RoleAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&account).Error
	})
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/smallbiznis/entitle/internal/apikey/domain"
	"github.com/smallbiznis/entitle/internal/clock"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Runtime *config.RuntimeConfigHolder
	Repo    apikeydomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	runtime *config.RuntimeConfigHolder
	repo    apikeydomain.Repository
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("apikey.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		runtime: p.Runtime,
		repo:    p.Repo,
	}
}

// IssueForCustomer implements domain.Service.
func (s *Service) IssueForCustomer(ctx context.Context, customerID snowflake.ID) (*apikeydomain.SecretResponse, error) {
	if customerID == 0 {
		return nil, apikeydomain.ErrInvalidCustomer
	}

	rc := s.runtime.Get()
	now := s.clock.Now()

	plain, hash, err := generateAPIKey(rc.APIKeyPrefix, rc.APIKeyBytes)
	if err != nil {
		return nil, err
	}

	key := &apikeydomain.APIKey{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		KeyHash:    hash,
		Scopes:     pq.StringArray{apikeydomain.ScopeSubscriptionRead},
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.revokeAll(ctx, tx, customerID, now); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, key)
	}); err != nil {
		return nil, err
	}

	s.log.Info("api key issued",
		zap.String("customer_id", customerID.String()),
		zap.String("key_id", key.ID.String()),
	)

	return &apikeydomain.SecretResponse{APIKey: plain, ExpiresAt: key.ExpiresAt}, nil
}

// Revoke implements domain.Service.
func (s *Service) Revoke(ctx context.Context, customerID snowflake.ID) error {
	if customerID == 0 {
		return apikeydomain.ErrInvalidCustomer
	}
	return s.revokeAll(ctx, s.db, customerID, s.clock.Now())
}

// ResolveKey implements domain.Service and identity.APIKeyLookup.
func (s *Service) ResolveKey(ctx context.Context, raw string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.HasPrefix(trimmed, s.runtime.Get().APIKeyPrefix) {
		return 0, apikeydomain.ErrNotFound
	}

	key, err := s.repo.FindByHash(ctx, s.db, apikeydomain.Fingerprint(trimmed))
	if err != nil {
		return 0, err
	}
	if key == nil || !key.IsActive || isExpired(key.ExpiresAt, s.clock.Now()) {
		return 0, apikeydomain.ErrNotFound
	}

	// Best effort; resolution must not fail because the touch did.
	now := s.clock.Now()
	key.LastUsedAt = &now
	key.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		s.log.Warn("api key touch failed", zap.Error(err))
	}

	return key.CustomerID, nil
}

func (s *Service) revokeAll(ctx context.Context, db *gorm.DB, customerID snowflake.ID, now time.Time) error {
	keys, err := s.repo.FindActiveByCustomerID(ctx, db, customerID)
	if err != nil {
		return err
	}
	for i := range keys {
		key := &keys[i]
		key.IsActive = false
		key.UpdatedAt = now
		if key.ExpiresAt == nil || key.ExpiresAt.After(now) {
			key.ExpiresAt = &now
		}
		if err := s.repo.Update(ctx, db, key); err != nil {
			return err
		}
	}
	return nil
}

func generateAPIKey(prefix string, secretBytes int) (string, string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}

	plain := prefix + hex.EncodeToString(secret)
	return plain, apikeydomain.Fingerprint(plain), nil
}

func isExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return now.After(*expiresAt)
}

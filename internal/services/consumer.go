package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"
)

// ConsumerStore persists consumer registrations.
type ConsumerStore interface {
	core.ConsumerRegistry
	SaveConsumer(ctx context.Context, consumer *models.Consumer) error
	ListConsumers(ctx context.Context) ([]models.Consumer, error)
	DeleteConsumer(ctx context.Context, key string) error
}

// ConsumerService manages the consumers allowed to sign requests.
type ConsumerService struct {
	store  ConsumerStore
	tokens *TokenService
	audit  *AuditService
}

func NewConsumerService(s ConsumerStore, tokens *TokenService, auditService *AuditService) *ConsumerService {
	return &ConsumerService{store: s, tokens: tokens, audit: auditService}
}

// RegisterConsumer validates and stores consumer, replacing an existing
// registration with the same key.
func (s *ConsumerService) RegisterConsumer(ctx context.Context, consumer *models.Consumer) error {
	consumer.Key = strings.TrimSpace(consumer.Key)
	consumer.Name = strings.TrimSpace(consumer.Name)

	switch {
	case consumer.Key == "":
		return fmt.Errorf("%w: consumer key is required", ErrInvalidConsumer)
	case consumer.Name == "":
		return fmt.Errorf("%w: consumer name is required", ErrInvalidConsumer)
	case consumer.Secret == "" && !consumer.HasPublicKey():
		return fmt.Errorf("%w: a shared secret or public key is required", ErrInvalidConsumer)
	case consumer.CallbackURL != "" && !util.IsValidCallbackURL(consumer.CallbackURL):
		return fmt.Errorf("%w: callback must be an absolute http(s) URL", ErrInvalidConsumer)
	}
	if consumer.HasPublicKey() {
		if _, err := oauth1.ParsePublicKey(consumer.PublicKey); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConsumer, err)
		}
	}

	if err := s.store.SaveConsumer(ctx, consumer); err != nil {
		return fmt.Errorf("failed to save consumer: %w", err)
	}

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventConsumerRegistered,
		ResourceType: models.ResourceConsumer,
		ResourceID:   consumer.Key,
		ResourceName: consumer.Name,
		ConsumerKey:  consumer.Key,
		Action:       "Consumer registered",
		Details: models.AuditDetails{
			"two_legged":    consumer.TwoLOAllowed,
			"rsa_signature": consumer.HasPublicKey(),
		},
		Success: true,
	})
	return nil
}

func (s *ConsumerService) GetConsumer(ctx context.Context, key string) (*models.Consumer, error) {
	consumer, err := s.store.GetConsumer(ctx, key)
	if err != nil {
		return nil, storeError(err, ErrConsumerNotFound, "failed to load consumer")
	}
	return consumer, nil
}

func (s *ConsumerService) ListConsumers(ctx context.Context) ([]models.Consumer, error) {
	return s.store.ListConsumers(ctx)
}

// RemoveConsumer deletes the registration and every token issued to it.
func (s *ConsumerService) RemoveConsumer(ctx context.Context, key string) error {
	if err := s.store.DeleteConsumer(ctx, key); err != nil {
		return storeError(err, ErrConsumerNotFound, "failed to delete consumer")
	}
	if _, err := s.tokens.RevokeConsumerTokens(ctx, key); err != nil {
		return err
	}

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventConsumerRemoved,
		Severity:     models.SeverityWarning,
		ResourceType: models.ResourceConsumer,
		ResourceID:   key,
		ConsumerKey:  key,
		Action:       "Consumer removed",
		Success:      true,
	})
	return nil
}

// SeedFromConfig registers the consumer described by OAUTH_CONSUMER_*
// settings. It does nothing when no consumer key is configured.
func (s *ConsumerService) SeedFromConfig(ctx context.Context, cfg *config.Config) error {
	if cfg.ConsumerKey == "" {
		return nil
	}

	consumer := &models.Consumer{
		Key:           cfg.ConsumerKey,
		Name:          cfg.ConsumerName,
		Secret:        cfg.ConsumerSecret,
		CallbackURL:   cfg.ConsumerCallbackURL,
		TwoLOAllowed:  cfg.ConsumerTwoLOAllowed,
		TwoLOExecutor: cfg.ConsumerTwoLOUser,
	}
	if consumer.Name == "" {
		consumer.Name = cfg.ConsumerKey
	}
	if cfg.ConsumerPublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.ConsumerPublicKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read consumer public key: %w", err)
		}
		consumer.PublicKey = string(pem)
	}

	existing, err := s.store.GetConsumer(ctx, consumer.Key)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return fmt.Errorf("failed to load consumer: %w", err)
	}
	if existing != nil {
		consumer.CreatedAt = existing.CreatedAt
	}

	if err := s.RegisterConsumer(ctx, consumer); err != nil {
		return err
	}
	log.Printf("[OAuth] registered consumer %q (2LO allowed: %v)", consumer.Key, consumer.TwoLOAllowed)
	return nil
}

package store

import (
	"context"

	"github.com/go-authgate/applink/internal/models"
)

// GetConsumer resolves a consumer key.
func (s *Store) GetConsumer(ctx context.Context, key string) (*models.Consumer, error) {
	var consumer models.Consumer
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&consumer).Error; err != nil {
		return nil, notFound(err)
	}
	return &consumer, nil
}

// SaveConsumer inserts or updates a consumer registration.
func (s *Store) SaveConsumer(ctx context.Context, consumer *models.Consumer) error {
	return s.db.WithContext(ctx).Save(consumer).Error
}

func (s *Store) ListConsumers(ctx context.Context) ([]models.Consumer, error) {
	var consumers []models.Consumer
	err := s.db.WithContext(ctx).Order("name ASC").Find(&consumers).Error
	return consumers, err
}

func (s *Store) DeleteConsumer(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Consumer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nftpulse/notifier/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, reasonable defaults are used:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetTrackedToken retrieves an active tracked token by contract address (case-insensitive)
func (s *pgStore) GetTrackedToken(ctx context.Context, contractAddress string) (*schema.TrackedToken, error) {
	var token schema.TrackedToken
	err := s.db.WithContext(ctx).
		Where("LOWER(contract_address) = LOWER(?)", contractAddress).
		Where("is_active = ?", true).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracked token: %w", err)
	}

	return &token, nil
}

// GetSubscriptionsForToken retrieves all deliverable subscriptions for a token
func (s *pgStore) GetSubscriptionsForToken(ctx context.Context, tokenID int64) ([]schema.Subscription, error) {
	var subscriptions []schema.Subscription
	err := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = subscriptions.user_id AND users.is_active = ?", true).
		Where("subscriptions.token_id = ?", tokenID).
		Where("subscriptions.notify_enabled = ?", true).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	return subscriptions, nil
}

// GetBroadcastChannels retrieves all active channels opted into trending or all-activity content
func (s *pgStore) GetBroadcastChannels(ctx context.Context) ([]schema.Channel, error) {
	var channels []schema.Channel
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("show_trending = ? OR show_all_activity = ?", true, true).
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcast channels: %w", err)
	}

	return channels, nil
}

// DeactivateUser marks a user inactive
func (s *pgStore) DeactivateUser(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.User{}).
		Where("id = ?", userID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return nil
}

// DeactivateChannel marks a channel inactive
func (s *pgStore) DeactivateChannel(ctx context.Context, channelID int64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Channel{}).
		Where("id = ?", channelID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate channel: %w", err)
	}

	return nil
}

// GetActiveTrendingPayment retrieves the trending payment valid at the given time, if any
func (s *pgStore) GetActiveTrendingPayment(ctx context.Context, contractAddress string, at time.Time) (*schema.TrendingPayment, error) {
	var payment schema.TrendingPayment
	err := s.db.WithContext(ctx).
		Where("LOWER(contract_address) = LOWER(?)", contractAddress).
		Where("is_active = ?", true).
		Where("end_time > ?", at).
		Order("end_time DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trending payment: %w", err)
	}

	return &payment, nil
}

// GetActiveLegacyTrending retrieves the legacy trending record valid at the given time, if any
func (s *pgStore) GetActiveLegacyTrending(ctx context.Context, contractAddress string, at time.Time) (*schema.LegacyTrending, error) {
	var record schema.LegacyTrending
	err := s.db.WithContext(ctx).
		Where("LOWER(contract_address) = LOWER(?)", contractAddress).
		Where("is_active = ?", true).
		Where("end_time > ?", at).
		Order("end_time DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get legacy trending record: %w", err)
	}

	return &record, nil
}

// GetActiveImageFeePayment retrieves the image-fee payment valid at the given time, if any
func (s *pgStore) GetActiveImageFeePayment(ctx context.Context, contractAddress string, at time.Time) (*schema.ImageFeePayment, error) {
	var payment schema.ImageFeePayment
	err := s.db.WithContext(ctx).
		Where("LOWER(contract_address) = LOWER(?)", contractAddress).
		Where("is_active = ?", true).
		Where("end_time > ?", at).
		Order("end_time DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image fee payment: %w", err)
	}

	return &payment, nil
}

// CreateActivityRecord appends one canonical activity to the activity log
func (s *pgStore) CreateActivityRecord(ctx context.Context, record *schema.ActivityRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create activity record: %w", err)
	}

	return nil
}

// CreateWebhookLog writes the audit row for an inbound delivery on receipt
func (s *pgStore) CreateWebhookLog(ctx context.Context, log *schema.WebhookLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}

	return nil
}

// CompleteWebhookLog updates the audit row once handling finished
func (s *pgStore) CompleteWebhookLog(ctx context.Context, id string, processed bool, processedCount int, errMsg *string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&schema.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":       processed,
			"processed_count": processedCount,
			"error":           errMsg,
			"completed_at":    &now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete webhook log: %w", err)
	}

	return nil
}

// Ping verifies database connectivity for health checks
func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

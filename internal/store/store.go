package store

import (
	"context"
	"time"

	"github.com/nftpulse/notifier/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetTrackedToken retrieves an active tracked token by contract address (case-insensitive)
	GetTrackedToken(ctx context.Context, contractAddress string) (*schema.TrackedToken, error)

	// GetSubscriptionsForToken retrieves all deliverable subscriptions for a token,
	// with the owning user preloaded; disabled subscriptions and inactive users are excluded
	GetSubscriptionsForToken(ctx context.Context, tokenID int64) ([]schema.Subscription, error)

	// GetBroadcastChannels retrieves all active channels opted into trending or all-activity content
	GetBroadcastChannels(ctx context.Context) ([]schema.Channel, error)

	// DeactivateUser marks a user inactive so future fan-outs stop targeting them
	DeactivateUser(ctx context.Context, userID int64) error

	// DeactivateChannel marks a channel inactive so future fan-outs stop targeting it
	DeactivateChannel(ctx context.Context, channelID int64) error

	// GetActiveTrendingPayment retrieves the trending payment valid at the given time, if any
	GetActiveTrendingPayment(ctx context.Context, contractAddress string, at time.Time) (*schema.TrendingPayment, error)

	// GetActiveLegacyTrending retrieves the legacy trending record valid at the given time, if any
	GetActiveLegacyTrending(ctx context.Context, contractAddress string, at time.Time) (*schema.LegacyTrending, error)

	// GetActiveImageFeePayment retrieves the image-fee payment valid at the given time, if any
	GetActiveImageFeePayment(ctx context.Context, contractAddress string, at time.Time) (*schema.ImageFeePayment, error)

	// CreateActivityRecord appends one canonical activity to the activity log
	CreateActivityRecord(ctx context.Context, record *schema.ActivityRecord) error

	// CreateWebhookLog writes the audit row for an inbound delivery on receipt
	CreateWebhookLog(ctx context.Context, log *schema.WebhookLog) error

	// CompleteWebhookLog updates the audit row once handling finished
	CompleteWebhookLog(ctx context.Context, id string, processed bool, processedCount int, errMsg *string) error

	// Ping verifies database connectivity for health checks
	Ping(ctx context.Context) error
}

package entitlement

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/store"
	"github.com/nftpulse/notifier/internal/store/schema"
)

// ChannelDecision is the outcome of evaluating channel broadcast
// eligibility for one collection
type ChannelDecision struct {
	// Notify is true when at least one channel should receive the activity
	Notify bool
	// IsTrending records the trending verdict the decision was based on
	IsTrending bool
	// Channels are the eligible broadcast targets
	Channels []schema.Channel
	// Reason explains a negative decision
	Reason string
}

// Gate decides trending status and channel eligibility. Providers are
// consulted in order and the first affirmative answer wins. A provider
// error is logged and treated as a negative answer, so an outage can
// suppress broadcasts but never cause one.
type Gate struct {
	providers []TrendingProvider
	store     store.Store
	clock     adapter.Clock
}

// NewGate creates a gate over the given providers, consulted in order
func NewGate(st store.Store, clock adapter.Clock, providers ...TrendingProvider) *Gate {
	return &Gate{
		providers: providers,
		store:     st,
		clock:     clock,
	}
}

// IsTrending reports whether any provider currently grants trending status
func (g *Gate) IsTrending(ctx context.Context, contractAddress string) bool {
	for _, provider := range g.providers {
		trending, err := provider.IsTrending(ctx, contractAddress)
		if err != nil {
			logger.ErrorCtx(ctx, errors.New("trending provider check failed"), zap.Error(err),
				zap.String("provider", provider.Name()),
				zap.String("contract", contractAddress))
			continue
		}
		if trending {
			return true
		}
	}
	return false
}

// EvaluateChannels decides whether and where to broadcast an activity.
// Channel broadcast is reserved for trending collections; a non-trending
// collection never reaches channels regardless of their settings.
func (g *Gate) EvaluateChannels(ctx context.Context, contractAddress string) (*ChannelDecision, error) {
	if !g.IsTrending(ctx, contractAddress) {
		return &ChannelDecision{
			Notify: false,
			Reason: "collection is not trending",
		}, nil
	}

	channels, err := g.store.GetBroadcastChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load broadcast channels: %w", err)
	}

	if len(channels) == 0 {
		return &ChannelDecision{
			Notify:     false,
			IsTrending: true,
			Reason:     "no active broadcast channels",
		}, nil
	}

	return &ChannelDecision{
		Notify:     true,
		IsTrending: true,
		Channels:   channels,
	}, nil
}

// IsImageFeeActive reports whether the collection holds an active image
// fee payment. Errors fail closed: an unverifiable payment is treated as
// absent.
func (g *Gate) IsImageFeeActive(ctx context.Context, contractAddress string) bool {
	payment, err := g.store.GetActiveImageFeePayment(ctx, contractAddress, g.clock.Now())
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("image fee check failed"), zap.Error(err),
			zap.String("contract", contractAddress))
		return false
	}
	return payment != nil
}

package entitlement

import (
	"context"
	"fmt"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/store"
)

// TrendingProvider answers whether a collection currently holds a trending
// entitlement from one source of truth
//
//go:generate mockgen -source=provider.go -destination=../mocks/trending_provider.go -package=mocks -mock_names=TrendingProvider=MockTrendingProvider
type TrendingProvider interface {
	// IsTrending reports whether contract is trending right now
	IsTrending(ctx context.Context, contractAddress string) (bool, error)

	// Name identifies the provider in logs
	Name() string
}

// paymentProvider grants trending from active paid trending placements
type paymentProvider struct {
	store store.Store
	clock adapter.Clock
}

// NewPaymentProvider creates the primary, payment-backed trending provider
func NewPaymentProvider(st store.Store, clock adapter.Clock) TrendingProvider {
	return &paymentProvider{store: st, clock: clock}
}

func (p *paymentProvider) IsTrending(ctx context.Context, contractAddress string) (bool, error) {
	payment, err := p.store.GetActiveTrendingPayment(ctx, contractAddress, p.clock.Now())
	if err != nil {
		return false, fmt.Errorf("failed to check trending payment: %w", err)
	}
	return payment != nil, nil
}

func (p *paymentProvider) Name() string {
	return "payment"
}

// legacyProvider grants trending from grandfathered placements that predate
// the payment system
type legacyProvider struct {
	store store.Store
	clock adapter.Clock
}

// NewLegacyProvider creates the legacy trending provider
func NewLegacyProvider(st store.Store, clock adapter.Clock) TrendingProvider {
	return &legacyProvider{store: st, clock: clock}
}

func (p *legacyProvider) IsTrending(ctx context.Context, contractAddress string) (bool, error) {
	record, err := p.store.GetActiveLegacyTrending(ctx, contractAddress, p.clock.Now())
	if err != nil {
		return false, fmt.Errorf("failed to check legacy trending: %w", err)
	}
	return record != nil, nil
}

func (p *legacyProvider) Name() string {
	return "legacy"
}

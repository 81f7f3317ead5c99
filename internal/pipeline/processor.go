package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/dedup"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/notify"
	"github.com/nftpulse/notifier/internal/store"
	"github.com/nftpulse/notifier/internal/store/schema"
)

// Processor runs one canonical activity through suppression, persistence,
// token lookup, and fan-out. Each source keeps its own suppression cache
// so a burst on one source never evicts another's recent keys.
type Processor struct {
	caches     map[domain.Source]*dedup.Cache
	store      store.Store
	dispatcher *notify.Dispatcher
	pool       pond.Pool
}

// NewProcessor creates a processor over per-source suppression caches.
// Batch items run on the given pool.
func NewProcessor(caches map[domain.Source]*dedup.Cache, st store.Store, dispatcher *notify.Dispatcher, pool pond.Pool) *Processor {
	return &Processor{
		caches:     caches,
		store:      st,
		dispatcher: dispatcher,
		pool:       pool,
	}
}

// Process handles one activity. It reports whether the activity was
// handled; false without an error means it was suppressed as a
// duplicate. The suppression key is marked before any work so a
// concurrent redelivery of the same event cannot double-notify.
func (p *Processor) Process(ctx context.Context, activity *domain.Activity) (bool, error) {
	cache, ok := p.caches[activity.Source]
	if !ok {
		return false, fmt.Errorf("no suppression cache for source %s", activity.Source)
	}

	key := activity.DedupKey()
	if cache.IsProcessed(key) {
		logger.DebugCtx(ctx, "Suppressing duplicate activity",
			zap.String("key", key))
		return false, nil
	}
	cache.MarkProcessed(key)

	p.recordActivity(ctx, activity)

	token, err := p.store.GetTrackedToken(ctx, activity.ContractAddress)
	if err != nil {
		return false, fmt.Errorf("failed to look up tracked token: %w", err)
	}
	if token == nil {
		logger.DebugCtx(ctx, "Activity for untracked token",
			zap.String("contract", activity.ContractAddress),
			zap.String("type", string(activity.Type)))
		return true, nil
	}

	if err := p.dispatcher.Dispatch(ctx, token, activity); err != nil {
		return false, fmt.Errorf("failed to dispatch notification: %w", err)
	}
	return true, nil
}

// ProcessBatch handles a batch on the worker pool with per-item
// isolation and returns how many items were handled. A slow item (a
// paid-image retry ladder can take tens of seconds) does not hold up
// the rest of the batch; the suppression cache guards redeliveries
// racing the in-flight items.
func (p *Processor) ProcessBatch(ctx context.Context, activities []*domain.Activity) int {
	var processed atomic.Int64
	group := p.pool.NewGroup()
	for _, activity := range activities {
		group.SubmitErr(func() error {
			handled, err := p.Process(ctx, activity)
			if err != nil {
				logger.ErrorCtx(ctx, errors.New("failed to process activity"), zap.Error(err),
					zap.String("contract", activity.ContractAddress),
					zap.String("source", string(activity.Source)),
					zap.String("type", string(activity.Type)))
				return nil
			}
			if handled {
				processed.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()
	return int(processed.Load())
}

// recordActivity appends the activity to the durable log. A write failure
// loses one audit row, not the notification.
func (p *Processor) recordActivity(ctx context.Context, activity *domain.Activity) {
	record := &schema.ActivityRecord{
		ID:              ulid.Make().String(),
		Source:          string(activity.Source),
		ContractAddress: activity.ContractAddress,
		TokenID:         activity.TokenID,
		TokenIDSource:   string(activity.TokenIDSource),
		ActivityType:    string(activity.Type),
		FromAddress:     activity.FromAddress,
		ToAddress:       activity.ToAddress,
		TxHash:          activity.TxHash,
		BlockNumber:     activity.BlockNumber,
		Price:           activity.Price,
		PriceCurrency:   activity.PriceCurrency,
		PriceUSD:        activity.PriceUSD,
		Marketplace:     activity.Marketplace,
		OccurredAt:      activity.Timestamp,
	}

	if err := p.store.CreateActivityRecord(ctx, record); err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to record activity"), zap.Error(err),
			zap.String("contract", activity.ContractAddress))
	}
}

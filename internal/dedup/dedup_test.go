package dedup_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/nftpulse/notifier/internal/dedup"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/mocks"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func newCache(t *testing.T) (*dedup.Cache, *mocks.MockClock) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	cache := dedup.NewCache("chain", dedup.Config{
		Window:        10 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}, clock)
	return cache, clock
}

func TestCache_UnknownKeyIsNotProcessed(t *testing.T) {
	cache, clock := newCache(t)
	clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.False(t, cache.IsProcessed("chain:0xabc:1:transfer:0xdef"))
}

func TestCache_MarkedKeyIsProcessedWithinWindow(t *testing.T) {
	cache, clock := newCache(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	clock.EXPECT().Now().Return(now)
	cache.MarkProcessed("k")

	clock.EXPECT().Now().Return(now.Add(9 * time.Minute))
	assert.True(t, cache.IsProcessed("k"))
}

func TestCache_ExpiredKeyIsTreatedAsNew(t *testing.T) {
	cache, clock := newCache(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	clock.EXPECT().Now().Return(now)
	cache.MarkProcessed("k")

	// Exactly at the window boundary the entry is already expired
	clock.EXPECT().Now().Return(now.Add(10 * time.Minute))
	assert.False(t, cache.IsProcessed("k"))

	// Lazy eviction removed it
	assert.Equal(t, 0, cache.Len())
}

func TestCache_SweepEvictsOnlyExpired(t *testing.T) {
	cache, clock := newCache(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	clock.EXPECT().Now().Return(now)
	cache.MarkProcessed("old")

	clock.EXPECT().Now().Return(now.Add(8 * time.Minute))
	cache.MarkProcessed("fresh")

	clock.EXPECT().Now().Return(now.Add(12 * time.Minute))
	evicted := cache.Sweep()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, cache.Len())

	clock.EXPECT().Now().Return(now.Add(12 * time.Minute))
	assert.True(t, cache.IsProcessed("fresh"))
}

func TestCache_ConcurrentMarkAndLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	cache := dedup.NewCache("chain", dedup.Config{Window: 10 * time.Minute}, clock)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%10))
			cache.MarkProcessed(key)
			_ = cache.IsProcessed(key)
			_ = cache.Sweep()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Len())
}

func TestCache_ZeroConfigFallsBackToDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cache := dedup.NewCache("market", dedup.Config{}, clock)

	clock.EXPECT().Now().Return(now)
	cache.MarkProcessed("k")

	clock.EXPECT().Now().Return(now.Add(dedup.DEFAULT_WINDOW - time.Second))
	assert.True(t, cache.IsProcessed("k"))

	clock.EXPECT().Now().Return(now.Add(dedup.DEFAULT_WINDOW))
	assert.False(t, cache.IsProcessed("k"))
}

package pipeline_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/dedup"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/entitlement"
	"github.com/nftpulse/notifier/internal/imaging"
	"github.com/nftpulse/notifier/internal/logger"
	"github.com/nftpulse/notifier/internal/mocks"
	"github.com/nftpulse/notifier/internal/notify"
	"github.com/nftpulse/notifier/internal/pipeline"
	"github.com/nftpulse/notifier/internal/store/schema"
)

const (
	contractAddress  = "0x3333333333333333333333333333333333333333"
	otherContract    = "0x4444444444444444444444444444444444444444"
	defaultImagePath = "/assets/default_nft.png"
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

type processorFixture struct {
	store     *mocks.MockStore
	messenger *mocks.MockMessenger
	trending  *mocks.MockTrendingProvider
	processor *pipeline.Processor
}

func setupProcessor(t *testing.T) *processorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &processorFixture{
		store:     mocks.NewMockStore(ctrl),
		messenger: mocks.NewMockMessenger(ctrl),
		trending:  mocks.NewMockTrendingProvider(ctrl),
	}

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	f.trending.EXPECT().Name().Return("payment").AnyTimes()

	fs := mocks.NewMockFileSystem(ctrl)
	fs.EXPECT().ReadFile(defaultImagePath).Return([]byte("png-bytes"), nil).AnyTimes()
	f.store.EXPECT().GetActiveImageFeePayment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	gate := entitlement.NewGate(f.store, clock, f.trending)
	images := imaging.NewPipeline(imaging.Config{
		DefaultImagePath: defaultImagePath,
		WorkDir:          "/work",
	}, mocks.NewMockHTTPClient(ctrl), fs, clock)

	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)

	dispatcher := notify.NewDispatcher(f.store, f.messenger, gate, images, pool)

	caches := map[domain.Source]*dedup.Cache{
		domain.SourceChain:       dedup.NewCache(string(domain.SourceChain), dedup.Config{}, clock),
		domain.SourceMarketplace: dedup.NewCache(string(domain.SourceMarketplace), dedup.Config{}, clock),
		domain.SourceSolana:      dedup.NewCache(string(domain.SourceSolana), dedup.Config{}, clock),
	}

	f.processor = pipeline.NewProcessor(caches, f.store, dispatcher, pool)
	return f
}

func strPtr(s string) *string { return &s }

func chainActivity(contract string, txHash string) *domain.Activity {
	return &domain.Activity{
		Source:          domain.SourceChain,
		ContractAddress: contract,
		TokenID:         strPtr("1"),
		TokenIDSource:   domain.TokenIDSourceExplicit,
		Type:            domain.ActivityTypeTransfer,
		FromAddress:     strPtr("0x1111111111111111111111111111111111111111"),
		ToAddress:       strPtr("0x2222222222222222222222222222222222222222"),
		TxHash:          strPtr(txHash),
		Timestamp:       time.Date(2026, 9, 1, 11, 59, 0, 0, time.UTC),
	}
}

func TestProcess_TrackedTokenNotifies(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, record *schema.ActivityRecord) error {
			assert.NotEmpty(t, record.ID)
			assert.Equal(t, "chain", record.Source)
			assert.Equal(t, "transfer", record.ActivityType)
			return nil
		})
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).
		Return(&schema.TrackedToken{ID: 7, ContractAddress: contractAddress, Name: "Cool Cats", IsActive: true}, nil)
	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return([]schema.Subscription{
		{ID: 1, UserID: 100, ChatID: 1001, ChatType: schema.ChatTypePrivate, NotifyEnabled: true},
	}, nil)
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(false, nil)
	f.messenger.EXPECT().SendPhoto(gomock.Any(), int64(1001), defaultImagePath, gomock.Any(), gomock.Any()).Return(nil)

	handled, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestProcess_DuplicateSuppressed(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	// First delivery does the full pipeline once
	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(nil)
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, nil)

	handled, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.True(t, handled)

	// Redelivery of the same event is suppressed without touching the store
	handled, err = f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestProcess_UntrackedTokenHandledQuietly(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(nil)
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, nil)
	// No messenger expectations: nothing is sent for untracked tokens

	handled, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestProcess_MarksBeforeWork(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	// The lookup fails, but the key was already marked: the redelivery is
	// suppressed instead of retried
	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(nil)
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, errors.New("db down"))

	_, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.Error(t, err)

	handled, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestProcess_SourcesDoNotShareKeys(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(nil).Times(2)
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, nil).Times(2)

	chain := chainActivity(contractAddress, "0xaaa")
	handled, err := f.processor.Process(ctx, chain)
	require.NoError(t, err)
	assert.True(t, handled)

	stream := chainActivity(contractAddress, "0xaaa")
	stream.Source = domain.SourceMarketplace
	handled, err = f.processor.Process(ctx, stream)
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestProcess_RecordFailureDoesNotBlockNotification(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(errors.New("db down"))
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, nil)

	handled, err := f.processor.Process(ctx, chainActivity(contractAddress, "0xaaa"))
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestProcessBatch_PerItemIsolation(t *testing.T) {
	f := setupProcessor(t)
	ctx := context.Background()

	f.store.EXPECT().CreateActivityRecord(ctx, gomock.Any()).Return(nil).Times(2)
	f.store.EXPECT().GetTrackedToken(ctx, contractAddress).Return(nil, errors.New("db down"))
	f.store.EXPECT().GetTrackedToken(ctx, otherContract).Return(nil, nil)

	processed := f.processor.ProcessBatch(ctx, []*domain.Activity{
		chainActivity(contractAddress, "0xaaa"),
		chainActivity(otherContract, "0xbbb"),
	})
	assert.Equal(t, 1, processed)
}

func TestProcess_UnknownSource(t *testing.T) {
	f := setupProcessor(t)

	activity := chainActivity(contractAddress, "0xaaa")
	activity.Source = "carrier-pigeon"

	_, err := f.processor.Process(context.Background(), activity)
	assert.Error(t, err)
}

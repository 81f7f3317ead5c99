package notify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/entitlement"
	"github.com/nftpulse/notifier/internal/imaging"
	"github.com/nftpulse/notifier/internal/mocks"
	"github.com/nftpulse/notifier/internal/notify"
	"github.com/nftpulse/notifier/internal/store/schema"
)

const (
	contractAddress  = "0x3333333333333333333333333333333333333333"
	defaultImagePath = "/assets/default_nft.png"
)

func errRecipientGone() error {
	return fmt.Errorf("%w: bot was blocked by the user", domain.ErrRecipientGone)
}

type dispatcherFixture struct {
	store     *mocks.MockStore
	messenger *mocks.MockMessenger
	trending  *mocks.MockTrendingProvider
	fs        *mocks.MockFileSystem
	clock     *mocks.MockClock
	token     *schema.TrackedToken
}

func setupDispatcher(t *testing.T) (*notify.Dispatcher, *dispatcherFixture) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &dispatcherFixture{
		store:     mocks.NewMockStore(ctrl),
		messenger: mocks.NewMockMessenger(ctrl),
		trending:  mocks.NewMockTrendingProvider(ctrl),
		fs:        mocks.NewMockFileSystem(ctrl),
		clock:     mocks.NewMockClock(ctrl),
		token: &schema.TrackedToken{
			ID:              7,
			ContractAddress: contractAddress,
			Name:            "Cool Cats",
			IsActive:        true,
		},
	}

	f.clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	f.trending.EXPECT().Name().Return("payment").AnyTimes()

	// Unpaid image path by default: no fee payment, default asset readable
	f.store.EXPECT().GetActiveImageFeePayment(gomock.Any(), contractAddress, gomock.Any()).Return(nil, nil).AnyTimes()
	f.fs.EXPECT().ReadFile(defaultImagePath).Return([]byte("png-bytes"), nil).AnyTimes()

	gate := entitlement.NewGate(f.store, f.clock, f.trending)
	images := imaging.NewPipeline(imaging.Config{
		DefaultImagePath: defaultImagePath,
		WorkDir:          "/work",
	}, mocks.NewMockHTTPClient(ctrl), f.fs, f.clock)

	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)

	return notify.NewDispatcher(f.store, f.messenger, gate, images, pool), f
}

func TestDispatch_NotifiesSubscribers(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return([]schema.Subscription{
		{ID: 1, UserID: 100, ChatID: 1001, ChatType: schema.ChatTypePrivate, NotifyEnabled: true},
		{ID: 2, UserID: 101, ChatID: -500, ChatType: schema.ChatTypeGroup, NotifyEnabled: true},
	}, nil)

	// Not trending, so no channel broadcast
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(false, nil)

	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(1001), defaultImagePath, gomock.Any(), gomock.Any()).
		Return(nil)
	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(-500), defaultImagePath, gomock.Any(), gomock.Any()).
		Return(nil)

	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_GoneUserDeactivated(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return([]schema.Subscription{
		{ID: 1, UserID: 100, ChatID: 1001, ChatType: schema.ChatTypePrivate, NotifyEnabled: true},
	}, nil)
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(false, nil)

	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(1001), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errRecipientGone())
	f.store.EXPECT().DeactivateUser(gomock.Any(), int64(100)).Return(nil)

	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_RecipientIsolation(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return([]schema.Subscription{
		{ID: 1, UserID: 100, ChatID: 1001, ChatType: schema.ChatTypePrivate, NotifyEnabled: true},
		{ID: 2, UserID: 101, ChatID: 1002, ChatType: schema.ChatTypePrivate, NotifyEnabled: true},
	}, nil)
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(false, nil)

	// One chat fails transiently; the other must still be attempted
	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(1001), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("bot API error 500: internal"))
	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(1002), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_TrendingBroadcastsToChannels(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return(nil, nil)

	// Trending at evaluation time and still trending at send time
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(true, nil).Times(2)
	f.store.EXPECT().GetBroadcastChannels(gomock.Any()).Return([]schema.Channel{
		{ID: 1, ChatID: -100, ShowTrending: true, IsActive: true},
	}, nil)

	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(-100), defaultImagePath, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ string, caption string, _ interface{}) error {
			assert.True(t, strings.Contains(caption, "🚀 <b>Trending</b>"))
			return nil
		})

	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_TrendingLapseSuppressesChannelSend(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return(nil, nil)

	// Trending at evaluation time, lapsed by send time
	gomock.InOrder(
		f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(true, nil),
		f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(false, nil),
	)
	f.store.EXPECT().GetBroadcastChannels(gomock.Any()).Return([]schema.Channel{
		{ID: 1, ChatID: -100, ShowTrending: true, IsActive: true},
	}, nil)

	// No SendPhoto expectation for the channel: the send must be suppressed
	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_GoneChannelDeactivated(t *testing.T) {
	dispatcher, f := setupDispatcher(t)
	ctx := context.Background()

	f.store.EXPECT().GetSubscriptionsForToken(ctx, int64(7)).Return(nil, nil)
	f.trending.EXPECT().IsTrending(gomock.Any(), contractAddress).Return(true, nil).Times(2)
	f.store.EXPECT().GetBroadcastChannels(gomock.Any()).Return([]schema.Channel{
		{ID: 3, ChatID: -100, ShowTrending: true, IsActive: true},
	}, nil)

	f.messenger.EXPECT().
		SendPhoto(gomock.Any(), int64(-100), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errRecipientGone())
	f.store.EXPECT().DeactivateChannel(gomock.Any(), int64(3)).Return(nil)

	require.NoError(t, dispatcher.Dispatch(ctx, f.token, saleActivity()))
}

func TestDispatch_DefaultImageFailureAbortsFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	st := mocks.NewMockStore(ctrl)
	messenger := mocks.NewMockMessenger(ctrl)
	trending := mocks.NewMockTrendingProvider(ctrl)
	fs := mocks.NewMockFileSystem(ctrl)
	clock := mocks.NewMockClock(ctrl)

	clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	trending.EXPECT().Name().Return("payment").AnyTimes()

	st.EXPECT().GetActiveImageFeePayment(gomock.Any(), contractAddress, gomock.Any()).Return(nil, nil)
	fs.EXPECT().ReadFile(defaultImagePath).Return(nil, errors.New("missing asset")).Times(2)

	// No subscription lookup and no sends: the fan-out never starts
	// when the image could not be resolved
	token := &schema.TrackedToken{ID: 7, ContractAddress: contractAddress, Name: "Cool Cats", IsActive: true}

	gate := entitlement.NewGate(st, clock, trending)
	images := imaging.NewPipeline(imaging.Config{
		DefaultImagePath: defaultImagePath,
		WorkDir:          "/work",
	}, mocks.NewMockHTTPClient(ctrl), fs, clock)
	pool := pond.NewPool(4)
	defer pool.StopAndWait()

	dispatcher := notify.NewDispatcher(st, messenger, gate, images, pool)
	err := dispatcher.Dispatch(ctx, token, saleActivity())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDefaultImageUnavailable)
}

func TestDispatch_PaidImageExhaustionAbortsFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	st := mocks.NewMockStore(ctrl)
	messenger := mocks.NewMockMessenger(ctrl)
	trending := mocks.NewMockTrendingProvider(ctrl)
	fs := mocks.NewMockFileSystem(ctrl)
	client := mocks.NewMockHTTPClient(ctrl)
	clock := mocks.NewMockClock(ctrl)

	clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	trending.EXPECT().Name().Return("payment").AnyTimes()

	// Active image fee: the paid path is taken and must never fall
	// back to the default asset or to a text-only send
	st.EXPECT().GetActiveImageFeePayment(gomock.Any(), contractAddress, gomock.Any()).
		Return(&schema.ImageFeePayment{ID: 1, ContractAddress: contractAddress}, nil)
	client.EXPECT().GetRaw(gomock.Any(), "https://cdn.example/cool.png", gomock.Any()).
		Return(nil, errors.New("upstream 502"))

	imageURL := "https://cdn.example/cool.png"
	token := &schema.TrackedToken{
		ID:              7,
		ContractAddress: contractAddress,
		Name:            "Cool Cats",
		ImageURL:        &imageURL,
		IsActive:        true,
	}

	gate := entitlement.NewGate(st, clock, trending)
	images := imaging.NewPipeline(imaging.Config{
		DefaultImagePath: defaultImagePath,
		WorkDir:          "/work",
		MaxAttempts:      1,
	}, client, fs, clock)
	pool := pond.NewPool(4)
	defer pool.StopAndWait()

	dispatcher := notify.NewDispatcher(st, messenger, gate, images, pool)
	err := dispatcher.Dispatch(ctx, token, saleActivity())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrImageRetriesExhausted)
}

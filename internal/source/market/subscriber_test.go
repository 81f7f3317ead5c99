package market_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/mocks"
	"github.com/nftpulse/notifier/internal/source/market"
)

func TestSubscriber_DispatchesStreamEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	quoter := mocks.NewMockQuoter(ctrl)
	quoter.EXPECT().QuoteUSD(gomock.Any(), "ETH").Return(2000.0, nil).AnyTimes()

	frame := `{
		"topic": "collection:cool-cats",
		"event": "sold",
		"payload": ` + string(soldPayload()) + `
	}`

	conn := mocks.NewMockWebSocketConn(ctrl)
	conn.EXPECT().WriteJSON(gomock.Any()).Return(nil).Times(2)
	conn.EXPECT().ReadMessage().Return(1, []byte(frame), nil)
	conn.EXPECT().ReadMessage().Return(0, nil, errors.New("connection reset")).AnyTimes()
	conn.EXPECT().Close().Return(nil).AnyTimes()

	dialer := mocks.NewMockWebSocketDialer(ctrl)
	dialer.EXPECT().
		DialContext(gomock.Any(), "wss://stream.example.com/socket", map[string]string{"X-API-Key": "key-123"}).
		Return(conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []*domain.Activity

	subscriber := market.NewSubscriber(market.Config{
		WebSocketURL: "wss://stream.example.com/socket",
		APIKey:       "key-123",
		Collections:  []string{"cool-cats", "punks"},
	}, dialer, market.NewAdapter(quoter, clock), clock)

	done := make(chan error, 1)
	go func() {
		done <- subscriber.Run(ctx, func(activity *domain.Activity) error {
			mu.Lock()
			received = append(received, activity)
			mu.Unlock()
			cancel()
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop after context cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, domain.ActivityTypeSale, received[0].Type)
	assert.Equal(t, contractAddress, received[0].ContractAddress)
}

func TestSubscriber_ReconnectsAfterDialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconnect := make(chan time.Time, 1)
	clock := mocks.NewMockClock(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dialer := mocks.NewMockWebSocketDialer(ctrl)
	first := dialer.EXPECT().
		DialContext(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dial tcp: refused"))
	dialer.EXPECT().
		DialContext(gomock.Any(), gomock.Any(), gomock.Any()).
		After(first).
		DoAndReturn(func(context.Context, string, map[string]string) (adapter.WebSocketConn, error) {
			cancel()
			return nil, errors.New("dial tcp: refused")
		})

	clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		reconnect <- time.Time{}
		return reconnect
	}).AnyTimes()

	subscriber := market.NewSubscriber(market.Config{
		WebSocketURL: "wss://stream.example.com/socket",
	}, dialer, market.NewAdapter(mocks.NewMockQuoter(ctrl), clock), clock)

	done := make(chan error, 1)
	go func() {
		done <- subscriber.Run(ctx, func(*domain.Activity) error { return nil })
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop after context cancellation")
	}
}

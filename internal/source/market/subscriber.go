package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
	"github.com/nftpulse/notifier/internal/logger"
)

const (
	DEFAULT_RECONNECT_WAIT    = 5 * time.Second
	DEFAULT_WORKER_POOL_SIZE  = 20
	DEFAULT_WORKER_QUEUE_SIZE = 2048
)

// ActivityHandler receives each converted activity from the stream
type ActivityHandler func(activity *domain.Activity) error

// Config holds the configuration for the marketplace stream subscription
type Config struct {
	WebSocketURL    string        // Stream endpoint
	APIKey          string        // Sent as X-API-Key on the handshake
	Collections     []string      // Collection slugs to subscribe to
	ReconnectWait   time.Duration // Delay between reconnect attempts
	WorkerPoolSize  int           // Number of concurrent workers
	WorkerQueueSize int           // Size of the task queue
}

// subscribeRequest is the per-collection subscription frame
type subscribeRequest struct {
	Action     string `json:"action"`
	Collection string `json:"collection"`
}

// Subscriber maintains the marketplace stream connection and feeds every
// event through the adapter into the handler
type Subscriber struct {
	config  Config
	dialer  adapter.WebSocketDialer
	adapter *Adapter
	clock   adapter.Clock
	pool    pond.Pool
}

// NewSubscriber creates a marketplace stream subscriber
func NewSubscriber(cfg Config, dialer adapter.WebSocketDialer, eventAdapter *Adapter, clock adapter.Clock) *Subscriber {
	return &Subscriber{
		config:  cfg,
		dialer:  dialer,
		adapter: eventAdapter,
		clock:   clock,
	}
}

// Run connects to the stream and dispatches events until ctx is canceled.
// Connection loss is not fatal: the subscriber waits and redials. Events
// arriving during an outage are lost; the stream has no replay.
func (s *Subscriber) Run(ctx context.Context, handler ActivityHandler) error {
	workerPoolSize := s.config.WorkerPoolSize
	if workerPoolSize == 0 {
		workerPoolSize = DEFAULT_WORKER_POOL_SIZE
	}
	workerQueueSize := s.config.WorkerQueueSize
	if workerQueueSize == 0 {
		workerQueueSize = DEFAULT_WORKER_QUEUE_SIZE
	}
	reconnectWait := s.config.ReconnectWait
	if reconnectWait == 0 {
		reconnectWait = DEFAULT_RECONNECT_WAIT
	}

	s.pool = pond.NewPool(
		workerPoolSize,
		pond.WithQueueSize(workerQueueSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Marketplace stream worker pool created",
		zap.Int("workers", workerPoolSize),
		zap.Int("queue_size", workerQueueSize),
		zap.Int("collections", len(s.config.Collections)))

	defer func() {
		logger.InfoCtx(ctx, "Shutting down marketplace stream worker pool",
			zap.Uint64("submitted", s.pool.SubmittedTasks()),
			zap.Uint64("waiting", s.pool.WaitingTasks()),
			zap.Uint64("failed", s.pool.FailedTasks()))
		s.pool.StopAndWait()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.connectAndRead(ctx, handler); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.ErrorCtx(ctx, errors.New("marketplace stream connection lost"), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(reconnectWait):
		}
	}
}

// connectAndRead dials once, subscribes, and reads until the connection fails
func (s *Subscriber) connectAndRead(ctx context.Context, handler ActivityHandler) error {
	var headers map[string]string
	if s.config.APIKey != "" {
		headers = map[string]string{"X-API-Key": s.config.APIKey}
	}

	conn, err := s.dialer.DialContext(ctx, s.config.WebSocketURL, headers)
	if err != nil {
		return fmt.Errorf("failed to connect to marketplace stream: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	// Close the socket when ctx ends so ReadMessage unblocks
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-readCtx.Done()
		_ = conn.Close()
	}()

	for _, collection := range s.config.Collections {
		if err := conn.WriteJSON(subscribeRequest{Action: "subscribe", Collection: collection}); err != nil {
			return fmt.Errorf("failed to subscribe to collection %s: %w", collection, err)
		}
	}

	logger.InfoCtx(ctx, "Marketplace stream connected",
		zap.String("url", s.config.WebSocketURL),
		zap.Strings("collections", s.config.Collections))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read stream message: %w", err)
		}
		s.handleMessage(ctx, data, handler)
	}
}

// handleMessage converts one raw frame and hands the result to the handler
// on the worker pool
func (s *Subscriber) handleMessage(ctx context.Context, data []byte, handler ActivityHandler) {
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.WarnCtx(ctx, "Dropping undecodable stream frame", zap.Error(err))
		return
	}
	if msg.Event == "" || msg.Payload == nil {
		return
	}

	s.pool.SubmitErr(func() error {
		activity, err := s.adapter.Convert(ctx, msg.Event, msg.Payload)
		if err != nil {
			logger.ErrorCtx(ctx, errors.New("error converting stream event"), zap.Error(err),
				zap.String("event", string(msg.Event)),
				zap.String("topic", msg.Topic))
			return nil
		}
		if activity == nil {
			return nil
		}

		if err := handler(activity); err != nil {
			logger.ErrorCtx(ctx, errors.New("error handling stream activity"), zap.Error(err),
				zap.String("contract", activity.ContractAddress),
				zap.String("type", string(activity.Type)))
			return err
		}
		return nil
	})
}

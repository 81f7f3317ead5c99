package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketDialer abstracts websocket connection establishment
//
//go:generate mockgen -source=websocket.go -destination=../mocks/websocket.go -package=mocks -mock_names=WebSocketDialer=MockWebSocketDialer,WebSocketConn=MockWebSocketConn
type WebSocketDialer interface {
	// DialContext opens a websocket connection to url with the given headers
	DialContext(ctx context.Context, url string, headers map[string]string) (WebSocketConn, error)
}

// WebSocketConn is an established websocket connection
type WebSocketConn interface {
	// ReadMessage blocks until the next message arrives
	ReadMessage() (messageType int, p []byte, err error)

	// WriteJSON writes v as a JSON text message
	WriteJSON(v interface{}) error

	// Close closes the underlying connection
	Close() error
}

// RealWebSocketDialer dials through gorilla/websocket
type RealWebSocketDialer struct{}

// NewRealWebSocketDialer creates a websocket dialer
func NewRealWebSocketDialer() *RealWebSocketDialer {
	return &RealWebSocketDialer{}
}

// DialContext opens a websocket connection to url with the given headers
func (d *RealWebSocketDialer) DialContext(ctx context.Context, url string, headers map[string]string) (WebSocketConn, error) {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial websocket (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return conn, nil
}

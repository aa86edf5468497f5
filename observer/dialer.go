// file: observer/dialer.go
package observer

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Conn is the read side of a subscription connection.
type Conn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// Dialer opens subscription connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials with gorilla/websocket. A nil Dialer uses
// websocket.DefaultDialer.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
}

// Dial connects to url. Failures wrap ErrConnection.
func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, url, err)
	}
	return conn, nil
}

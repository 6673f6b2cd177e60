package steamclient

import (
	"context"
	"fmt"

	"github.com/coder/websocket"

	"github.com/k64z/steamstacks/steamerrors"
)

// Connection abstracts a transport to a Steam CM server: either the
// WebSocket path (wssConn, below) or the raw-TCP VT01 path (netfilterConn
// in transport_tcp.go).
type Connection interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	Close() error
	RemoteAddr() string
}

// cmWebSocketReadLimit bounds a single frame read from a CM WebSocket.
// EMsgMulti bundles can be large; 16 MiB comfortably covers Steam's observed
// maximums without letting a misbehaving server force unbounded allocation.
const cmWebSocketReadLimit = 1 << 24

// wssConn implements Connection over the wss://<host>/cmsocket/ endpoint CM
// servers expose for browser-compatible clients.
type wssConn struct {
	ws   *websocket.Conn
	addr string
}

func dialWebSocket(ctx context.Context, host string) (*wssConn, error) {
	endpoint := fmt.Sprintf("wss://%s/cmsocket/", host)

	ws, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", steamerrors.ErrHandshakeFailed, endpoint, err)
	}
	ws.SetReadLimit(cmWebSocketReadLimit)

	return &wssConn{ws: ws, addr: host}, nil
}

func (c *wssConn) Write(ctx context.Context, data []byte) error {
	if err := c.ws.Write(ctx, websocket.MessageBinary, data); err != nil {
		return fmt.Errorf("%w: %v", steamerrors.ErrTransportClosed, err)
	}
	return nil
}

func (c *wssConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", steamerrors.ErrTransportClosed, err)
	}
	return data, nil
}

func (c *wssConn) Close() error {
	return c.ws.CloseNow()
}

func (c *wssConn) RemoteAddr() string {
	return c.addr
}

// Package websocket streams dashboard views to browser sessions. Clients send
// filter actions and view options; the server answers with the re-rendered
// view and pushes it to every other connection of the same session.
package websocket

import (
	"context"
	"net"
	"time"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/services"
)

// Connection is the subset of *websocket.Conn a client uses.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() net.Addr
}

// SessionService is the part of the dashboard service the stream drives.
type SessionService interface {
	View(ctx context.Context, id string) (*services.SessionView, error)
	ApplyAction(ctx context.Context, id string, action filter.Action) (*services.SessionView, error)
	SetOptions(ctx context.Context, id string, opts dashboard.Options) (*services.SessionView, error)
}

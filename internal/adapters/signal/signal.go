package signal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	return o
}

// WSConn adapts a websocket to orch.Transport. Outbound frames go through a
// bounded queue drained by the write pump; the write pump owns the socket
// and closes it on exit.
type WSConn struct {
	conn *websocket.Conn
	send chan core.Frame
	done chan struct{}
	opts Options

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewWSConn(ws *websocket.Conn, opts Options) *WSConn {
	opts = opts.withDefaults()
	c := &WSConn{
		conn: ws,
		send: make(chan core.Frame, opts.SendBuffer),
		done: make(chan struct{}),
		opts: opts,
	}
	ws.SetReadLimit(opts.ReadLimit)
	c.armKeepalive()
	return c
}

func (c *WSConn) Send(ctx context.Context, f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrBackpressure, ctx.Err())
	}
}

// Close stops accepting frames. The write pump flushes what is queued,
// sends a close frame and releases the socket.
func (c *WSConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *WSConn) Reject(reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("reject write close")
	}
	c.Close()
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Opts     Options
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		Opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleSignal upgrades the request and runs the connection lifecycle until
// the peer disconnects or ctx is canceled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, raw domain.RawSession) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("remote", c.ClientIP()).Msg("new WS connection")

	conn := NewWSConn(ws, ctl.Opts)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		conn.writePump(ctx)
	}()

	if err := ctl.Orch.Serve(ctx, raw, conn); err != nil {
		log.Info().Err(err).Str("module", "signal").Msg("connection ended")
	}
	conn.Close()
	<-pumpDone
}

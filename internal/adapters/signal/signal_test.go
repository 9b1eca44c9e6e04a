package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair returns the server and client ends of one websocket.
func pair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	ch := make(chan *websocket.Conn, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ch <- ws
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server := <-ch
	t.Cleanup(func() { _ = server.Close() })
	return server, client
}

func TestWSConn_SendAndFlush(t *testing.T) {
	server, client := pair(t)
	c := NewWSConn(server, Options{})
	go c.writePump(context.Background())

	require.NoError(t, c.Send(context.Background(), []byte(`{"action":"presence","presence":[]}`)))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	mt, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.JSONEq(t, `{"action":"presence","presence":[]}`, string(data))

	c.Close()
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestWSConn_SendAfterClose(t *testing.T) {
	server, _ := pair(t)
	c := NewWSConn(server, Options{})
	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Send(context.Background(), []byte("x")), ErrConnClosed)
}

func TestWSConn_Backpressure(t *testing.T) {
	server, _ := pair(t)
	c := NewWSConn(server, Options{SendBuffer: 1})

	require.NoError(t, c.Send(context.Background(), []byte("1")))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Send(ctx, []byte("2")), ErrBackpressure)
}

func TestWSConn_ReceiveSkipsBinary(t *testing.T) {
	server, client := pair(t)
	c := NewWSConn(server, Options{})

	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{0x01}))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"action":"send","message":"hi"}`)))

	f, err := c.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"action":"send","message":"hi"}`, string(f))
}

func TestWSConn_ReceiveUnblocksOnCancel(t *testing.T) {
	server, _ := pair(t)
	c := NewWSConn(server, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Receive did not return after cancel")
	}
}

func TestWSConn_RejectSendsPolicyViolation(t *testing.T) {
	server, client := pair(t)
	c := NewWSConn(server, Options{})

	c.Reject("nickname invalid")
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := client.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Contains(t, err.Error(), "nickname invalid")
	assert.ErrorIs(t, c.Send(context.Background(), []byte("x")), ErrConnClosed)
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{PingPeriod: time.Minute, PongWait: 30 * time.Second}.withDefaults()
	assert.Equal(t, 27*time.Second, o.PingPeriod)
	assert.Equal(t, int64(32768), o.ReadLimit)
	assert.Equal(t, 32, o.SendBuffer)
	assert.Equal(t, 5*time.Second, o.WriteWait)
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenantconsole-backend/shared/database/models"
)

func newStreamServer(t *testing.T, ctx context.Context) (*AuditStream, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stream := NewAuditStream("http://console.local", zap.NewNop(), nil)
	go stream.Run(ctx)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) { stream.HandleConnection(c, c.Query("id")) })
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return stream, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) AuditMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg AuditMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestAuditStream_BroadcastsToEveryClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, url := newStreamServer(t, ctx)

	first, _, err := websocket.DefaultDialer.Dial(url+"?id=a", nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url+"?id=b", nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, "connection", readMessage(t, first).Type)
	assert.Equal(t, "connection", readMessage(t, second).Type)
	assert.Equal(t, 2, stream.ClientCount())

	stream.Publish(models.AuditLogEntry{TenantID: "t1", Action: AuditTenantCreated, Actor: "System Administrator"})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, "audit", msg.Type)
		require.NotNil(t, msg.Entry)
		assert.Equal(t, AuditTenantCreated, msg.Entry.Action)
	}
}

func TestAuditStream_PingAndDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, url := newStreamServer(t, ctx)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return stream.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestAuditStream_RejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, url := newStreamServer(t, ctx)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuditStream_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream, url := newStreamServer(t, ctx)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, stream.ClientCount())

	// Publishing after shutdown must not block.
	stream.Publish(models.AuditLogEntry{Action: AuditTenantDeleted})
}

func TestReportObjectKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "setup-reports/tenant-1/20240309T160405Z.json", ReportObjectKey("tenant-1", at))
}

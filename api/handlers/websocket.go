package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/michat/michat-api/api"
	"github.com/michat/michat-api/realtime"
)

const (
	readLimit = 4096
	pongWait  = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the api is served cross-origin to the chat frontend
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Socket is the connection gateway: it authenticates the upgrade, registers
// the connection and pumps inbound frames into the chat router
type Socket struct {
	Auth api.Auth
	Chat *realtime.Router
}

// ServeWS handles GET /ws?token=...
func (s Socket) ServeWS(w http.ResponseWriter, r *http.Request) {
	// authenticate before upgrading, but reject through a websocket close
	// frame so browser clients observe a policy-violation close rather than
	// a failed handshake they cannot inspect
	user, authErr := s.Auth.Authenticate(r)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Debugw("websocket upgrade failed", "error", err)
		return
	}

	if authErr != nil || user.Details.IsBanned {
		reason := "unauthorized"
		if authErr == nil {
			reason = "account banned"
			zap.S().Infow("banned user rejected at connect", "user_id", user.ID)
		}
		deadline := time.Now().Add(time.Second)
		_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(realtime.CloseUnauthorized, reason), deadline)
		_ = ws.Close()
		return
	}

	conn := realtime.NewConnection(user.ID, ws)
	registry := s.Chat.Registry()
	registry.Register(conn)
	conn.Start()

	zap.S().Infow("websocket connected",
		"user_id", user.ID,
		"connections", registry.Count(),
	)

	// unregister must run on every exit path so fan-out never hits a dead
	// connection
	defer func() {
		registry.Unregister(conn)
		conn.Close(websocket.CloseNormalClosure, "")
		zap.S().Infow("websocket disconnected",
			"user_id", user.ID,
			"connections", registry.Count(),
		)
	}()

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		ctx, cancel := api.WithQueryTimeout(r.Context())
		routeErr := s.Chat.HandleFrame(ctx, user.ID, raw)
		cancel()
		if routeErr == nil {
			continue
		}

		// the offending connection alone hears about the failure
		if err := conn.SendJSON(realtime.NewErrorFrame(routeErr)); err != nil {
			return
		}
		if realtime.Fatal(routeErr) {
			conn.Close(realtime.CloseUnauthorized, string(realtime.CodeOf(routeErr)))
			return
		}
	}
}

// Package activity streams a user's follow and like events over a
// websocket, fed from the user's Redis activity channel.
package activity

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"

	"fitshare/errs"
	"fitshare/mq"
	"fitshare/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Stream upgrades authenticated requests and forwards activity events.
type Stream struct {
	conn     redis.UniversalClient
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewStream builds a Stream. origins lists the allowed browser origins; "*"
// allows any.
func NewStream(conn redis.UniversalClient, origins []string, log *slog.Logger) *Stream {
	return &Stream{
		conn: conn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: log,
	}
}

// Serve handles GET /ws/activity. It must run behind Authenticate.
func (s *Stream) Serve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, s.log, errs.Unauthorized("missing token"))
		return
	}

	ctx := r.Context()
	sub := s.conn.Subscribe(ctx, mq.ActivityChannel(userID))
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		utils.RespondWithError(w, s.log, errs.Internal("subscribing to activity").WithCause(err))
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = ws.Close() }()
	s.log.Info("activity stream opened", "user_id", userID)

	closed := make(chan struct{})
	go readLoop(ws, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	events := sub.Channel()
	for {
		select {
		case <-closed:
			s.log.Info("activity stream closed", "user_id", userID)
			return
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func readLoop(ws *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		if slices.Contains(origins, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/liveroom/internal/coordinator"
	"github.com/cwrk-planet/liveroom/internal/identity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	PingEvery      time.Duration
	WriteWait      time.Duration
	ReadLimit      int64
	SendBuffer     int
	AllowedOrigins []string
}

func (o *Options) setDefaults() {
	if o.PingEvery <= 0 {
		o.PingEvery = 15 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
}

type Server struct {
	upgrader websocket.Upgrader
	coord    *coordinator.Coordinator
	verifier identity.Verifier
	tracer   trace.Tracer
	opts     Options
}

func NewServer(coord *coordinator.Coordinator, verifier identity.Verifier, opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		coord:    coord,
		verifier: verifier,
		tracer:   otel.Tracer("github.com/cwrk-planet/liveroom/internal/transport/ws"),
		opts:     opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// HandleWS serves GET /ws?access_token=...&user_id=...
// The bearer header and X-User-ID are accepted as well.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("access_token")
	if token == "" {
		token = identity.BearerToken(r.Header.Get("Authorization"))
	}
	claimed := q.Get("user_id")
	if claimed == "" {
		claimed = r.Header.Get("X-User-ID")
	}
	ident, err := s.verifier.Verify(token, claimed)
	if err != nil {
		slog.Debug("ws auth failed", "err", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already wrote the response
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(uuid.NewString(), conn, ident, s.opts.SendBuffer, s.opts.WriteWait, s.opts.PingEvery)
	s.coord.Connect(c)
	slog.Info("ws connected", "conn", c.id, "user", ident.UserID)

	defer func() {
		s.coord.Disconnect(c.id)
		if err := c.Close(); err != nil {
			slog.Debug("ws close failed", "conn", c.id, "err", err)
		}
		slog.Info("ws disconnected", "conn", c.id, "user", ident.UserID)
	}()

	go c.writeLoop()
	s.readLoop(r.Context(), c)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(s.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read failed", "conn", c.id, "err", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.reject(c, "", "invalid json")
			continue
		}
		s.handle(ctx, c, env)
	}
}

func (s *Server) handle(ctx context.Context, c *wsConn, env Envelope) {
	ctx, span := s.tracer.Start(ctx, "ws "+env.Type, trace.WithAttributes(
		attribute.String("ws.conn_id", c.id),
		attribute.String("ws.event", env.Type),
	))
	defer span.End()

	ev, err := decodeEvent(env)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.reject(c, env.Type, err.Error())
		return
	}
	if join, ok := ev.(coordinator.JoinRoom); ok {
		// identity comes from the verified token, never from the payload
		join.UserID = c.identity.UserID
		ev = join
	}

	err = s.coord.Dispatch(ctx, c.id, ev)
	switch {
	case err == nil:
	case errors.Is(err, coordinator.ErrValidation), errors.Is(err, coordinator.ErrDuplicateJoin):
		span.SetStatus(codes.Error, err.Error())
		s.reject(c, env.Type, err.Error())
	case errors.Is(err, coordinator.ErrNotFound):
		// stale room reference, dropped
	default:
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "ws dispatch failed", "conn", c.id, "event", env.Type, "err", err)
	}
}

// reject echoes an error to the originating connection only.
func (s *Server) reject(c *wsConn, event, msg string) {
	_ = c.Send(coordinator.Message{
		Type:    coordinator.TypeError,
		Payload: coordinator.ErrorPayload{Event: event, Message: msg},
	})
}

package server

import (
	"log/slog"

	"foodgram/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams the current user's notifications.
// @Summary Realtime notifications
// @Tags realtime
// @Security TokenAuth
// @Success 101
// @Failure 426 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)
		middleware.Logger.Debug("websocket connected",
			slog.Uint64("user_id", uint64(uid)),
			slog.Int("user_connections", s.hub.Connections(uid)),
		)

		// The pooled conn is released when this handler returns, so the
		// writer must be done with it first. ReadPump closes Send on exit,
		// which stops WritePump.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			client.WritePump()
		}()
		client.ReadPump()
		<-writerDone
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}

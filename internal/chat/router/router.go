package router

import (
	"context"

	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册 chat 相關路由
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler) {
	// healthz 不過 JWT
	r.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}

package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/internal/pkg/serverutils"
	"mindcare-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	Sessions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/", c.Send)
	h.Post("/stream", c.Stream)
	h.Get("/sessions", c.Sessions)
	h.Get("/sessions/:id/history", c.History)

	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws", websocket.New(c.handleSocket))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

// Stream runs one turn as server-sent events. Each frame is
// "event: <type>\ndata: <json>\n\n"; the stream closes after the terminal
// complete or error frame.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream outlives the fiber handler, so it runs on a detached
	// context cancelled when the client stops reading.
	streamCtx, cancel := context.WithCancel(context.Background())
	events, err := c.chatService.StreamChat(streamCtx, userId, &req)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

// handleSocket streams turns over one WebSocket connection: each incoming
// JSON request produces the same event sequence as the SSE endpoint.
func (c *chatController) handleSocket(conn *websocket.Conn) {
	defer conn.Close()

	userIdStr, _ := conn.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		conn.WriteJSON(dto.StreamEvent{
			Event:   dto.EventError,
			Code:    apperr.CodeValidationFailed,
			Message: "missing user identity",
		})
		return
	}

	for {
		var req dto.SendChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		streamCtx, cancel := context.WithCancel(context.Background())
		events, err := c.chatService.StreamChat(streamCtx, userId, &req)
		if err != nil {
			cancel()
			if writeErr := conn.WriteJSON(dto.StreamEvent{
				Event:   dto.EventError,
				Code:    apperr.CodeOf(err),
				Message: err.Error(),
			}); writeErr != nil {
				return
			}
			continue
		}

		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				cancel()
				return
			}
		}
		cancel()
	}
}

func (c *chatController) Sessions(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	res, err := c.chatService.GetSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.New(apperr.CodeValidationFailed, "invalid session id")
	}

	res, err := c.chatService.GetChatHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func localUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

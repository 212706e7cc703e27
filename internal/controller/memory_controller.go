package controller

import (
	"mindcare-chat-be/internal/pkg/serverutils"
	"mindcare-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMemoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type memoryController struct {
	memoryService service.IMemoryService
}

func NewMemoryController(memoryService service.IMemoryService) IMemoryController {
	return &memoryController{
		memoryService: memoryService,
	}
}

func (c *memoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/memory/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/", c.List)
}

func (c *memoryController) List(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	records, err := c.memoryService.GetForUser(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list memory records", records))
}

package controller

import (
	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/pkg/serverutils"
	"mindcare-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISummaryController interface {
	RegisterRoutes(r fiber.Router)
	Daily(ctx *fiber.Ctx) error
	Weekly(ctx *fiber.Ctx) error
}

type summaryController struct {
	summaryService service.ISummaryService
}

func NewSummaryController(summaryService service.ISummaryService) ISummaryController {
	return &summaryController{
		summaryService: summaryService,
	}
}

func (c *summaryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/summary/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/daily", c.Daily)
	h.Post("/weekly", c.Weekly)
}

func (c *summaryController) Daily(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	var req dto.GenerateSummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.summaryService.GenerateDaily(ctx.Context(), userId, req.ChatSessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate daily summary", res))
}

func (c *summaryController) Weekly(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	var req dto.GenerateSummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.summaryService.GenerateWeekly(ctx.Context(), userId, req.ChatSessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate weekly summary", res))
}

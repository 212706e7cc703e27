package controller

import (
	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/pkg/serverutils"
	"mindcare-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITherapistController interface {
	RegisterRoutes(r fiber.Router)
	Recommend(ctx *fiber.Ctx) error
}

type therapistController struct {
	recommendationService service.IRecommendationService
}

func NewTherapistController(recommendationService service.IRecommendationService) ITherapistController {
	return &therapistController{
		recommendationService: recommendationService,
	}
}

func (c *therapistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/therapist/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/recommend", c.Recommend)
}

func (c *therapistController) Recommend(ctx *fiber.Ctx) error {
	var req dto.RecommendTherapistRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	recs, err := c.recommendationService.Recommend(ctx.Context(), req.Concern, req.Locale, req.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success recommend therapists", dto.RecommendTherapistResponse{Recommendations: recs}))
}

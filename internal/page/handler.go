package page

import (
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// requestLocale honours ?locale= before Accept-Language.
func requestLocale(c *fiber.Ctx) models.Locale {
	if l, ok := models.ParseLocale(c.Query("locale")); ok && l.Valid() {
		return l
	}
	return models.MatchLocale(c.Get(fiber.HeaderAcceptLanguage))
}

func (h *Handler) ListPages(c *fiber.Ctx) error {
	pages, err := h.service.List(c.UserContext(), requestLocale(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, pages, "Pages retrieved successfully")
}

func (h *Handler) GetPage(c *fiber.Ctx) error {
	page, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, page, "Page retrieved successfully")
}

func (h *Handler) CreatePage(c *fiber.Ctx) error {
	var body Input
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	page, err := h.service.Create(c.UserContext(), middleware.Principal(c), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, page, "Page created successfully")
}

func (h *Handler) UpdatePage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid page ID", nil)
	}

	var body Input
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	page, err := h.service.Update(c.UserContext(), middleware.Principal(c), uint(id), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, page, "Page updated successfully")
}

func (h *Handler) DeletePage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid page ID", nil)
	}

	res, err := h.service.Delete(c.UserContext(), middleware.Principal(c), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Outcome(c, nil, "Page deleted", res.Warnings, res.Redirect)
}

func (h *Handler) CreateSection(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid page ID", nil)
	}

	var body Input
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	section, err := h.service.CreateSection(c.UserContext(), middleware.Principal(c), uint(id), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, section, "Section created successfully")
}

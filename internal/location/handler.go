package location

import (
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Directory is the public listing: displayed divisions and branches only.
func (h *Handler) Directory(c *fiber.Ctx) error {
	return h.directory(c, true)
}

// FullDirectory includes hidden entries for location managers.
func (h *Handler) FullDirectory(c *fiber.Ctx) error {
	return h.directory(c, false)
}

func (h *Handler) directory(c *fiber.Ctx, onlyDisplayed bool) error {
	divisions, err := h.service.Directory(c.UserContext(), onlyDisplayed)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, divisions, "Locations retrieved successfully")
}

func (h *Handler) CreateDivision(c *fiber.Ctx) error {
	var body DivisionInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	division, err := h.service.CreateDivision(c.UserContext(), middleware.Principal(c), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, division, "Division created successfully")
}

func (h *Handler) UpdateDivision(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid division ID", nil)
	}

	var body DivisionInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	division, err := h.service.UpdateDivision(c.UserContext(), middleware.Principal(c), uint(id), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, division, "Division updated successfully")
}

func (h *Handler) DeleteDivision(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid division ID", nil)
	}

	if err := h.service.DeleteDivision(c.UserContext(), middleware.Principal(c), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) CreateBranch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid division ID", nil)
	}

	var body BranchInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	branch, err := h.service.CreateBranch(c.UserContext(), middleware.Principal(c), uint(id), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, branch, "Branch created successfully")
}

func (h *Handler) UpdateBranch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid branch ID", nil)
	}

	var body BranchInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	branch, err := h.service.UpdateBranch(c.UserContext(), middleware.Principal(c), uint(id), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, branch, "Branch updated successfully")
}

func (h *Handler) DeleteBranch(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid branch ID", nil)
	}

	if err := h.service.DeleteBranch(c.UserContext(), middleware.Principal(c), uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

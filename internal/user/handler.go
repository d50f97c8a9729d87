package user

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

func userID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	return uint(id), err == nil && id > 0
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, users, "Users retrieved successfully")
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}
	u, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, u, "User retrieved successfully")
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	u, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, u, "User created successfully")
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	u, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, u, "User updated successfully")
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID", nil)
	}
	if err := h.service.Delete(c.UserContext(), middleware.Principal(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

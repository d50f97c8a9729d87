package role

import (
	"github.com/Kyz7/hub/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func roleID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	return uint(id), err == nil && id > 0
}

func (h *Handler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, roles, "Roles retrieved successfully")
}

func (h *Handler) GetRole(c *fiber.Ctx) error {
	id, ok := roleID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID", nil)
	}
	role, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, role, "Role retrieved successfully")
}

func (h *Handler) CreateRole(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	role, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, role, "Role created successfully")
}

func (h *Handler) UpdateRole(c *fiber.Ctx) error {
	id, ok := roleID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID", nil)
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	role, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, role, "Role updated successfully")
}

func (h *Handler) DeleteRole(c *fiber.Ctx) error {
	id, ok := roleID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID", nil)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) DuplicateRole(c *fiber.Ctx) error {
	id, ok := roleID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID", nil)
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	role, err := h.service.Duplicate(c.UserContext(), id, body.Name)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, role, "Role duplicated successfully")
}

func (h *Handler) AssignRole(c *fiber.Ctx) error {
	var body struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	user, err := h.service.Assign(c.UserContext(), body.UserID, body.RoleID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user, "Role assigned successfully")
}

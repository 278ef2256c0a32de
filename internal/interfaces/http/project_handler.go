package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
)

// ProjectHandler maneja proyectos de entrega: listado por estado, detalle,
// edición, reorden y métricas.
type ProjectHandler struct {
	projects *sqlite.ProjectRepo
}

// NewProjectHandler construye el handler de proyectos.
func NewProjectHandler(projects *sqlite.ProjectRepo) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List devuelve los proyectos según ?is_done, ordenados por su posición.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	isDone := c.Query("is_done") == "true"
	list, err := h.projects.List(c.Context(), isDone)
	if err != nil {
		return internalError(c, err)
	}
	out := make([]dto.ProjectResponse, 0, len(list))
	for _, pj := range list {
		out = append(out, dto.FromProject(pj))
	}
	return c.JSON(out)
}

// Get devuelve el detalle con prospecto embebido y subtareas.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	pj, err := h.projects.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proyecto no encontrado"})
		}
		return internalError(c, err)
	}
	return c.JSON(dto.FromProject(pj))
}

// Update aplica link y el cierre manual is_done. Cada campo tiene su propia
// tabla de roles aunque compartan la ruta.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	role := entity.Role(GetRole(c))
	if in.IsDone != nil && !capability.CanPerform(role, capability.ActionToggleProjectDone) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para cerrar proyectos"})
	}
	if in.Link != nil && !capability.CanPerform(role, capability.ActionEditProjectLink) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para editar el link"})
	}
	err := h.projects.Update(c.Context(), c.Params("id"), in.Link, in.IsDone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proyecto no encontrado"})
		}
		return internalError(c, err)
	}

	pj, err := h.projects.Get(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.FromProject(pj))
}

// Reorder persiste el nuevo orden completo del tablero "en curso".
func (h *ProjectHandler) Reorder(c *fiber.Ctx) error {
	var in dto.ReorderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.projects.Reorder(c.Context(), in.OrderedIDs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "orderedIds no puede ir vacío"})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		return internalError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Stats devuelve los tres indicadores del dashboard.
func (h *ProjectHandler) Stats(c *fiber.Ctx) error {
	total, active, revenue, err := h.projects.Stats(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.StatsResponse{
		TotalProspects: total,
		ActiveProjects: active,
		Revenue:        revenue.String(),
	})
}

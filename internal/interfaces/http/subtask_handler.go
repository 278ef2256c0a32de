package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
)

// SubtaskHandler maneja las subtareas de proyectos y prospectos. El autor se
// toma del token, nunca del cuerpo.
type SubtaskHandler struct {
	subtasks *sqlite.SubtaskRepo
}

// NewSubtaskHandler construye el handler de subtareas.
func NewSubtaskHandler(subtasks *sqlite.SubtaskRepo) *SubtaskHandler {
	return &SubtaskHandler{subtasks: subtasks}
}

// Get devuelve una subtarea por id.
func (h *SubtaskHandler) Get(c *fiber.Ctx) error {
	st, err := h.subtasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "subtarea no encontrada"})
		}
		return internalError(c, err)
	}
	return c.JSON(dto.FromSubtask(st))
}

// Create da de alta una subtarea colgada de un proyecto o de un prospecto.
func (h *SubtaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSubtaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}

	st, err := h.subtasks.Create(c.Context(), entity.Subtask{
		ProjectID:   in.ProjectID,
		ProspectID:  in.ProspectID,
		Name:        in.Name,
		Description: in.Description,
		Deadline:    in.Deadline,
		Link:        in.Link,
		Progress:    entity.CheckpointNew,
		CreatedBy:   entity.CreatedBy{ID: GetUserID(c), Username: GetUsername(c)},
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la subtarea necesita exactamente un padre (projectId o prospectId)"})
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSubtask(st))
}

// Update aplica los campos presentes. Progress solo acepta los seis
// checkpoints; cualquier otro valor se rechaza sin efectos.
func (h *SubtaskHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSubtaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var cp *entity.Checkpoint
	if in.Progress != nil {
		v := entity.Checkpoint(*in.Progress)
		cp = &v
	}
	err := h.subtasks.Update(c.Context(), c.Params("id"), in.Name, in.Description, in.Link, in.Deadline, cp)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "subtarea no encontrada"})
		case errors.Is(err, domain.ErrInvalidCheckpoint):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "progress debe ser uno de 0, 20, 40, 60, 80, 100"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name no puede ir vacío"})
		}
		return internalError(c, err)
	}

	st, err := h.subtasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(dto.FromSubtask(st))
}

// Delete elimina una subtarea.
func (h *SubtaskHandler) Delete(c *fiber.Ctx) error {
	err := h.subtasks.Delete(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "subtarea no encontrada"})
		}
		return internalError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

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

// ProspectHandler maneja el CRUD de prospectos y el movimiento de columna.
type ProspectHandler struct {
	prospects *sqlite.ProspectRepo
}

// NewProspectHandler construye el handler de prospectos.
func NewProspectHandler(prospects *sqlite.ProspectRepo) *ProspectHandler {
	return &ProspectHandler{prospects: prospects}
}

// List devuelve todos los prospectos. El cliente decide qué columnas pinta;
// los REAL_LOSS viajan igual para que el detalle de cerrados funcione.
func (h *ProspectHandler) List(c *fiber.Ctx) error {
	list, err := h.prospects.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	out := make([]dto.ProspectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromProspect(p))
	}
	return c.JSON(out)
}

// Get devuelve el detalle con proyecto asociado y checklist.
func (h *ProspectHandler) Get(c *fiber.Ctx) error {
	p, err := h.prospects.Get(c.Context(), c.Params("no_project"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "prospecto no encontrado"})
		}
		return internalError(c, err)
	}
	return c.JSON(dto.FromProspect(p))
}

// Create da de alta un prospecto. no_project es la clave natural que pone
// quien lo crea.
func (h *ProspectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProspectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.NoProject == "" || in.NameProject == "" || in.ClientName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "no_project, name_project y client_name son requeridos"})
	}

	p, err := h.prospects.Create(c.Context(), entity.Prospect{
		NoProject:   in.NoProject,
		NameProject: in.NameProject,
		ClientName:  in.ClientName,
		ContactName: in.ContactName,
		DealValue:   in.DealValue,
		Status:      entity.ProspectStatus(in.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el no_project ya existe"})
		case errors.Is(err, domain.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status fuera del conjunto permitido"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campos requeridos vacíos"})
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProspect(p))
}

// Update aplica los campos presentes. Un cambio de status pasa por la máquina
// de transiciones: WON y REAL_LOSS crean el proyecto de entrega aquí, nunca
// en el cliente.
func (h *ProspectHandler) Update(c *fiber.Ctx) error {
	no := c.Params("no_project")
	var in dto.UpdateProspectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	if in.NameProject != nil || in.ClientName != nil || in.ContactName != nil || in.DealValue != nil {
		err := h.prospects.Update(c.Context(), no, in.NameProject, in.ClientName, in.ContactName, in.DealValue)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "prospecto no encontrado"})
			case errors.Is(err, domain.ErrInvalidInput):
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campos requeridos vacíos"})
			}
			return internalError(c, err)
		}
	}
	if in.Status != nil {
		// El movimiento REAL_LOSS no es un movimiento más: exige un rol con
		// permiso de castigo aunque la misma ruta sirva al resto de columnas.
		if entity.ProspectStatus(*in.Status) == entity.StatusRealLoss &&
			!capability.CanPerform(entity.Role(GetRole(c)), capability.ActionMarkRealLoss) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para marcar REAL LOSS"})
		}
		err := h.prospects.UpdateStatus(c.Context(), no, entity.ProspectStatus(*in.Status))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "prospecto no encontrado"})
			case errors.Is(err, domain.ErrInvalidStatus):
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status fuera del conjunto permitido"})
			case errors.Is(err, domain.ErrConflict):
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
			}
			return internalError(c, err)
		}
	}

	p, err := h.prospects.Get(c.Context(), no)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "prospecto no encontrado"})
		}
		return internalError(c, err)
	}
	return c.JSON(dto.FromProspect(p))
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

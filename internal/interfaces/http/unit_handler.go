package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// Mensajes fijos del cuerpo de error.
const (
	msgValidationFailed = "Validation Failed"
	msgNotFound         = "Item not found"
	msgInternal         = "Internal Server Error"
)

// UnitHandler maneja las peticiones HTTP del catálogo.
type UnitHandler struct {
	importUC *appcatalog.ImportUseCase
	deleteUC *appcatalog.DeleteUseCase
	queryUC  *appcatalog.QueryUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewUnitHandler construye el handler.
func NewUnitHandler(
	importUC *appcatalog.ImportUseCase,
	deleteUC *appcatalog.DeleteUseCase,
	queryUC *appcatalog.QueryUseCase,
	validate *validator.Validate,
	log *logger.Logger,
) *UnitHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UnitHandler{
		importUC: importUC,
		deleteUC: deleteUC,
		queryUC:  queryUC,
		validate: validate,
		log:      log.WithComponent("http"),
	}
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: fiber.StatusBadRequest, Message: msgValidationFailed})
}

// fail traduce errores de dominio a HTTP. Solo los 500 se registran.
func (h *UnitHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return badRequest(c)
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: fiber.StatusNotFound, Message: msgNotFound})
	}
	h.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: fiber.StatusInternalServerError, Message: msgInternal})
}

// Import godoc
// @Summary      Importar lote de unidades
// @Description  Inserta o reemplaza todas las unidades del lote de forma atómica y recalcula los precios de sus categorías.
// @Tags         basic
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnitImportRequest  true  "Lote de unidades"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /imports [post]
func (h *UnitHandler) Import(c *fiber.Ctx) error {
	var in dto.UnitImportRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c)
	}
	out, err := h.importUC.Import(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set("X-Batch-Id", out.BatchID)
	return c.JSON(dto.MessageResponse{
		Code:    fiber.StatusOK,
		Message: fmt.Sprintf("Success for 'imports' (%d items)", len(in.Items)),
	})
}

// Delete godoc
// @Summary      Eliminar unidad
// @Description  Elimina la unidad, todo su subárbol y su historial.
// @Tags         basic
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /delete/{id} [delete]
func (h *UnitHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c)
	}
	if err := h.deleteUC.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MessageResponse{
		Code:    fiber.StatusOK,
		Message: fmt.Sprintf("Success for 'delete' (id: %s)", id),
	})
}

// GetNode godoc
// @Summary      Obtener unidad con su subárbol
// @Tags         basic
// @Produce      json
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /nodes/{id} [get]
func (h *UnitHandler) GetNode(c *fiber.Ctx) error {
	out, err := h.queryUC.GetUnitTree(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Ofertas actualizadas en las últimas 24 horas
// @Tags         extra
// @Produce      json
// @Param        date  query  string  true  "Fecha de referencia ISO 8601"
// @Success      200   {object}  dto.UnitStatisticListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /sales [get]
func (h *UnitHandler) Sales(c *fiber.Ctx) error {
	raw := c.Query("date")
	if raw == "" {
		return badRequest(c)
	}
	date, err := dto.ParseDate(raw)
	if err != nil {
		return badRequest(c)
	}
	out, err := h.queryUC.GetSales(c.UserContext(), date)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Historial de una unidad
// @Tags         extra
// @Produce      json
// @Param        id         path   string  true   "ID de la unidad"
// @Param        dateStart  query  string  false  "Inicio del intervalo (incluido)"
// @Param        dateEnd    query  string  false  "Fin del intervalo (incluido)"
// @Success      200        {object}  dto.UnitStatisticListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /node/{id}/statistics [get]
func (h *UnitHandler) Statistics(c *fiber.Ctx) error {
	start, err := optionalDate(c.Query("dateStart"))
	if err != nil {
		return badRequest(c)
	}
	end, err := optionalDate(c.Query("dateEnd"))
	if err != nil {
		return badRequest(c)
	}
	out, err := h.queryUC.GetUnitStatistics(c.UserContext(), c.Params("id"), start, end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

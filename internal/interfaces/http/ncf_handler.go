package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/facturacion-rd/internal/application/dto"
	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/domain"
	"github.com/jhoicas/facturacion-rd/internal/domain/ncf"
)

// NCFHandler maneja la numeración fiscal: catálogo de tipos, lotes
// autorizados, vista previa del próximo comprobante y alertas.
type NCFHandler struct {
	batches   *fiscal.BatchUseCase
	allocator *fiscal.Allocator
	alerts    *fiscal.AlertsUseCase
}

// NewNCFHandler construye el handler.
func NewNCFHandler(batches *fiscal.BatchUseCase, allocator *fiscal.Allocator, alerts *fiscal.AlertsUseCase) *NCFHandler {
	return &NCFHandler{batches: batches, allocator: allocator, alerts: alerts}
}

// ListTypes godoc
// @Summary      Catálogo de tipos de NCF (DGII)
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.NCFTypeResponse
// @Router       /api/ncf/types [get]
func (h *NCFHandler) ListTypes(c *fiber.Ctx) error {
	return c.JSON(h.batches.ListTypes())
}

// CreateBatch godoc
// @Summary      Registrar lote de numeración autorizado
// @Tags         ncf
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateNCFBatchRequest  true  "Tipo, rango y vencimiento"
// @Success      201   {object}  dto.NCFBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ncf/batches [post]
func (h *NCFHandler) CreateBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateNCFBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.batches.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return h.mapBatchError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBatches godoc
// @Summary      Listar lotes de la empresa con campos calculados
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.NCFBatchListResponse
// @Router       /api/ncf/batches [get]
func (h *NCFHandler) ListBatches(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.batches.List(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetBatch godoc
// @Summary      Obtener un lote por ID
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.NCFBatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ncf/batches/{id} [get]
func (h *NCFHandler) GetBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.batches.GetByID(c.Context(), companyID, id)
	if err != nil {
		return h.mapBatchError(c, err)
	}
	return c.JSON(out)
}

// UpdateBatch godoc
// @Summary      Editar un lote (extender rango, vencimiento, activar/desactivar)
// @Tags         ncf
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                     true  "ID del lote"
// @Param        body  body  dto.UpdateNCFBatchRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.NCFBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "asignación concurrente ganó la carrera"
// @Router       /api/ncf/batches/{id} [put]
func (h *NCFHandler) UpdateBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateNCFBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.batches.Update(c.Context(), companyID, userID, id, in)
	if err != nil {
		return h.mapBatchError(c, err)
	}
	return c.JSON(out)
}

// DeleteBatch godoc
// @Summary      Eliminar un lote (queda snapshot en auditoría)
// @Tags         ncf
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ncf/batches/{id} [delete]
func (h *NCFHandler) DeleteBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.batches.Delete(c.Context(), companyID, userID, id); err != nil {
		return h.mapBatchError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PreviewNext godoc
// @Summary      Próximo NCF sin consumirlo
// @Description  Vista previa para el punto de venta. No mueve el cursor; el
// @Description  valor mostrado puede ser tomado por otra caja antes de emitir.
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Param        type_code  query  string  true  "Tipo de NCF (ej. B02)"
// @Success      200  {object}  dto.PreviewNCFResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ncf/batches/preview [get]
func (h *NCFHandler) PreviewNext(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	typeCode := c.Query("type_code")
	if typeCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type_code es requerido"})
	}
	next, reason, err := h.allocator.PreviewNext(c.Context(), companyID, typeCode)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.PreviewNCFResponse{Next: next, Reason: reason})
}

// Validate godoc
// @Summary      Validar formato de un NCF de terceros
// @Description  Verifica estructura y tipo (gasto registrado contra un NCF de
// @Description  un suplidor). No consulta a la DGII: solo valida el formato.
// @Tags         ncf
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ValidateNCFRequest  true  "NCF y tipo esperado"
// @Success      200   {object}  dto.ValidateNCFResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ncf/validate [post]
func (h *NCFHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateNCFRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.NCF == "" || in.ExpectedType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ncf y expected_type son requeridos"})
	}
	return c.JSON(dto.ValidateNCFResponse{Valid: ncf.ValidateFormat(in.NCF, in.ExpectedType)})
}

// UsageAlerts godoc
// @Summary      Alertas de consumo de lotes (>=75%% y >=90%%)
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.NCFUsageAlert
// @Router       /api/ncf/alerts/usage [get]
func (h *NCFHandler) UsageAlerts(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.alerts.GetUsageAlerts(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ExpirationAlerts godoc
// @Summary      Alertas de vencimiento de lotes
// @Tags         ncf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.NCFExpirationAlert
// @Router       /api/ncf/alerts/expiration [get]
func (h *NCFHandler) ExpirationAlerts(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.alerts.GetExpirationAlerts(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

func (h *NCFHandler) mapBatchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "una asignación concurrente modificó el lote, reintente"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "lote duplicado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

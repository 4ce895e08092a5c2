package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/usecase"
)

// MerchantHandler CRUD de comercios (protegido).
type MerchantHandler struct {
	uc *usecase.MerchantUseCase
}

// NewMerchantHandler construye el handler.
func NewMerchantHandler(uc *usecase.MerchantUseCase) *MerchantHandler {
	return &MerchantHandler{uc: uc}
}

// Create godoc
// @Summary      Crear comercio
// @Tags         merchants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMerchantRequest  true  "name, contact, phone, address"
// @Success      201   {object}  dto.MerchantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/merchants [post]
func (h *MerchantHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMerchantRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar comercios
// @Tags         merchants
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "nombre, contacto o teléfono"
// @Param        page       query  int     false  "página"
// @Param        limit      query  int     false  "tamaño"
// @Param        sortBy     query  string  false  "name | createdAt"
// @Param        sortOrder  query  string  false  "asc | desc"
// @Success      200  {object}  dto.MerchantListResponse
// @Router       /api/merchants [get]
func (h *MerchantHandler) List(c *fiber.Ctx) error {
	var in dto.MerchantListRequest
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener comercio con sus últimos movimientos
// @Tags         merchants
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del comercio"
// @Success      200  {object}  dto.MerchantDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/merchants/{id} [get]
func (h *MerchantHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar comercio
// @Tags         merchants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del comercio"
// @Param        body  body  dto.UpdateMerchantRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.MerchantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/merchants/{id} [put]
func (h *MerchantHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMerchantRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar comercio sin movimientos
// @Tags         merchants
// @Security     Bearer
// @Param        id   path  string  true  "ID del comercio"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "REFERENCED"
// @Router       /api/merchants/{id} [delete]
func (h *MerchantHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "comercio eliminado"})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type InventoryHandler struct {
	writer  *inventory.LedgerWriter
	batch   *inventory.BatchInboundUseCase
	reports *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(writer *inventory.LedgerWriter, batch *inventory.BatchInboundUseCase, reports *inventory.ReportUseCase) *InventoryHandler {
	return &InventoryHandler{writer: writer, batch: batch, reports: reports}
}

// StockIn godoc
// @Summary      Registrar entrada de mercancía
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "productId, quantity, date (opcional), notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.writer.RecordInboundFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// StockOut godoc
// @Summary      Registrar salida hacia un comercio
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "productId, merchantId, quantity, date (opcional), notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.writer.RecordOutboundFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// BatchStockIn godoc
// @Summary      Registrar entradas por lote (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchStockInRequest  true  "items[{productId, quantity, notes}], date, notes"
// @Success      201   {object}  dto.BatchStockInResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/batch-stock-in [post]
func (h *InventoryHandler) BatchStockIn(c *fiber.Ctx) error {
	var in dto.BatchStockInRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.batch.RecordBatchInboundFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTransactions godoc
// @Summary      Listar movimientos con filtros, página y estadísticas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "producto, especificación, comercio o notas"
// @Param        productId   query  string  false  "producto"
// @Param        merchantId  query  string  false  "comercio"
// @Param        type        query  string  false  "INBOUND | OUTBOUND (alias IN | OUT)"
// @Param        startDate   query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        endDate     query  string  false  "RFC3339 o YYYY-MM-DD (inclusivo)"
// @Param        page        query  int     false  "página (por defecto 1)"
// @Param        limit       query  int     false  "tamaño (por defecto 10, máximo 100)"
// @Param        sortBy      query  string  false  "date | quantity | createdAt"
// @Param        sortOrder   query  string  false  "asc | desc"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	var in dto.MovementFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.reports.ListMovements(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTransaction godoc
// @Summary      Obtener un movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id} [get]
func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	out, err := h.reports.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

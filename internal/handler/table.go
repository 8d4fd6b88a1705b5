package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableStore is the table persistence used by TableHandler.
type TableStore interface {
	ListTables(ctx context.Context) ([]model.Table, error)
	GetTable(ctx context.Context, id uint64) (*model.Table, error)
	CreateTable(ctx context.Context, t *model.Table) error
	DeleteTable(ctx context.Context, id uint64) error
	RegenerateQRCodes(ctx context.Context, baseURL string) (int, error)
}

// TableHandler manages dining tables.
type TableHandler struct {
	Tables  TableStore
	BaseURL string
}

func NewTableHandler(tables TableStore, baseURL string) *TableHandler {
	return &TableHandler{Tables: tables, BaseURL: baseURL}
}

type createTableReq struct {
	Number   int `json:"number"`
	Capacity int `json:"capacity"`
}

func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	tables, err := h.Tables.ListTables(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if tables == nil {
		tables = []model.Table{}
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tables.GetTable(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Create adds a table.  Its QR code is derived from the public base URL
// and the table number.
func (h *TableHandler) Create(c echo.Context) error {
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Number <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number must be positive"})
	}
	if req.Capacity <= 0 {
		req.Capacity = 4
	}
	t := &model.Table{
		Number:   req.Number,
		Capacity: req.Capacity,
		QRCode:   model.TableQRCode(h.BaseURL, req.Number),
		Status:   model.TableAvailable,
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Tables.CreateTable(ctx, t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Delete removes a table that no order references.
func (h *TableHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Tables.DeleteTable(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RegenerateQRCodes rewrites every table's QR code for the current base URL.
func (h *TableHandler) RegenerateQRCodes(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Tables.RegenerateQRCodes(ctx, h.BaseURL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n, "baseUrl": h.BaseURL})
}

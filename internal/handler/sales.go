package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// SaleStore is the sale persistence used by SalesHandler.
type SaleStore interface {
	ListSales(ctx context.Context) ([]model.Sale, error)
	ListDeletedSales(ctx context.Context) ([]model.Sale, error)
	SoftDeleteSale(ctx context.Context, id uint64) error
}

type SalesHandler struct {
	Sales SaleStore
}

func NewSalesHandler(sales SaleStore) *SalesHandler { return &SalesHandler{Sales: sales} }

func (h *SalesHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	sales, err := h.Sales.ListSales(ctx)
	return listSales(c, sales, err)
}

// Archived lists soft-deleted sales.
func (h *SalesHandler) Archived(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	sales, err := h.Sales.ListDeletedSales(ctx)
	return listSales(c, sales, err)
}

func listSales(c echo.Context, sales []model.Sale, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	if sales == nil {
		sales = []model.Sale{}
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *SalesHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Sales.SoftDeleteSale(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/order"
)

// OrderService is the order lifecycle used by OrderHandler.
type OrderService interface {
	Create(ctx context.Context, in order.CreateInput) (*model.OrderWithItems, error)
	Get(ctx context.Context, id uint64) (*model.OrderWithItems, error)
	List(ctx context.Context) ([]model.OrderWithItems, error)
	Active(ctx context.Context) ([]model.OrderWithItems, error)
	Deleted(ctx context.Context) ([]model.OrderWithItems, error)
	UpdateStatus(ctx context.Context, id uint64, patch model.OrderPatch) (*model.Order, error)
	Delete(ctx context.Context, id uint64) error
	Receipt(ctx context.Context, id uint64) (*order.Receipt, error)
	Snapshot(ctx context.Context, tableNumber int) (*model.MenuSnapshot, error)
	ReconcileTables(ctx context.Context) (int, error)
}

// OrderHandler serves the public order endpoints and the staff order
// board.
type OrderHandler struct {
	Orders OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler { return &OrderHandler{Orders: svc} }

// Menu returns the table snapshot polled by the customer page.
func (h *OrderHandler) Menu(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("tableNumber"))
	if err != nil || n <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table number"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	snap, err := h.Orders.Snapshot(ctx, n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// Create places a customer order.
func (h *OrderHandler) Create(c echo.Context) error {
	var in order.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	o, err := h.Orders.Create(ctx, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// Get returns one order with its items.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	o, err := h.Orders.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Receipt returns the receipt of a paid order.
func (h *OrderHandler) Receipt(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.Orders.Receipt(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// List returns every live order, or only active ones with ?active=true.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var (
		orders []model.OrderWithItems
		err    error
	)
	if active, _ := strconv.ParseBool(c.QueryParam("active")); active {
		orders, err = h.Orders.Active(ctx)
	} else {
		orders, err = h.Orders.List(ctx)
	}
	if err != nil {
		return writeError(c, err)
	}
	if orders == nil {
		orders = []model.OrderWithItems{}
	}
	return c.JSON(http.StatusOK, orders)
}

// Update applies a staff patch.  Changing anything but the status needs
// orders.edit; a status-only patch is allowed with orders.update_status.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.OrderPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !statusOnly(patch) && !canEdit(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func canEdit(c echo.Context) bool { return middleware.HasPermission(c, "orders.edit") }

func statusOnly(p model.OrderPatch) bool {
	return p.PaymentMethod == nil && p.CustomerName == nil && p.CustomerPhone == nil && p.Notes == nil
}

// Delete soft-deletes an order.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Orders.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Archived lists soft-deleted orders.
func (h *OrderHandler) Archived(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	orders, err := h.Orders.Deleted(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if orders == nil {
		orders = []model.OrderWithItems{}
	}
	return c.JSON(http.StatusOK, orders)
}

// ReconcileTables recomputes every table from its active orders.
func (h *OrderHandler) ReconcileTables(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	changed, err := h.Orders.ReconcileTables(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": changed})
}

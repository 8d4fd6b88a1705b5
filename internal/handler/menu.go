package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/order"
)

// MenuHandler serves the public category and product lists.
type MenuHandler struct {
	Menu order.MenuReader
}

func NewMenuHandler(menu order.MenuReader) *MenuHandler { return &MenuHandler{Menu: menu} }

func (h *MenuHandler) Categories(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	cats, err := h.Menu.ListCategories(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return c.JSON(http.StatusOK, cats)
}

// Products lists available, non-archived products.
func (h *MenuHandler) Products(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	products, err := h.Menu.ListAvailableProducts(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

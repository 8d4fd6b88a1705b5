package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/payment"
)

// ConfigHandler shows the non-secret runtime settings to staff.
type ConfigHandler struct {
	Env           string
	Currency      string
	PublicBaseURL string
	Gateway       *payment.Gateway
}

func (h *ConfigHandler) Get(c echo.Context) error {
	methods := h.Gateway.Methods()
	if methods == nil {
		methods = []payment.MethodInfo{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"environment":    h.Env,
		"currency":       h.Currency,
		"publicBaseUrl":  h.PublicBaseURL,
		"paymentMethods": methods,
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/payment"
)

// PaymentHandler exposes the payment gateway.  Provider failures are
// reported in the body with success false, not as HTTP errors.
type PaymentHandler struct {
	Gateway *payment.Gateway
}

func NewPaymentHandler(gw *payment.Gateway) *PaymentHandler { return &PaymentHandler{Gateway: gw} }

// Methods lists the payment methods customers may pick.
func (h *PaymentHandler) Methods(c echo.Context) error {
	methods := h.Gateway.Methods()
	if methods == nil {
		methods = []payment.MethodInfo{}
	}
	return c.JSON(http.StatusOK, methods)
}

// Initiate starts a payment.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req payment.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Method = strings.TrimSpace(req.Method)
	if req.Method == "" || !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method and a positive amount are required"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	return c.JSON(http.StatusOK, h.Gateway.InitiatePayment(ctx, req))
}

// Status reports the state of a transaction.
func (h *PaymentHandler) Status(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	st, err := h.Gateway.CheckPaymentStatus(ctx, c.Param("method"), c.Param("transactionId"))
	if errors.Is(err, payment.ErrUnsupportedMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Webhook accepts a provider callback.  It always answers 200 so that
// providers do not retry malformed payloads forever.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return c.JSON(http.StatusOK, payment.WebhookResult{Success: false})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	return c.JSON(http.StatusOK, h.Gateway.ProcessWebhook(ctx, c.Param("method"), payload))
}

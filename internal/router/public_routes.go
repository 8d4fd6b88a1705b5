package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
)

// Public bundles the handlers reachable without a staff session.
type Public struct {
	Orders   *handler.OrderHandler
	Menu     *handler.MenuHandler
	Payments *handler.PaymentHandler
}

// RegisterPublic registers the customer facing routes.  rateLimit guards
// order submission and cache wraps the menu lists.
func RegisterPublic(e *echo.Echo, p Public, rateLimit, cache echo.MiddlewareFunc) {
	v1 := e.Group("/v1")

	v1.GET("/menu/:tableNumber", p.Orders.Menu)
	v1.GET("/categories", p.Menu.Categories, cache)
	v1.GET("/products", p.Menu.Products, cache)

	v1.POST("/orders", p.Orders.Create, rateLimit)
	v1.GET("/orders/:id", p.Orders.Get)
	v1.GET("/orders/:id/receipt", p.Orders.Receipt)

	v1.GET("/payments/methods", p.Payments.Methods)
	v1.POST("/payments/initiate", p.Payments.Initiate, rateLimit)
	v1.GET("/payments/:method/:transactionId", p.Payments.Status)
	v1.POST("/payments/:method/webhook", p.Payments.Webhook)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
)

// Staff bundles the back office handlers.
type Staff struct {
	Orders    *handler.OrderHandler
	Tables    *handler.TableHandler
	Sales     *handler.SalesHandler
	Analytics *handler.AnalyticsHandler
	Config    *handler.ConfigHandler
}

// RegisterStaff registers the back office routes under /v1.  Every route
// needs a valid access token and the listed permission.
func RegisterStaff(e *echo.Echo, s Staff, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	perm := middleware.RequirePermission

	// ---- Orders ----
	g.GET("/orders", s.Orders.List, perm("orders.view"))
	g.PUT("/orders/:id", s.Orders.Update, perm("orders.edit", "orders.update_status"))
	g.DELETE("/orders/:id", s.Orders.Delete, perm("orders.delete"))

	// ---- Archives ----
	g.GET("/archives/orders", s.Orders.Archived, perm("archives.view"))
	g.GET("/archives/sales", s.Sales.Archived, perm("archives.view"))

	// ---- Tables ----
	g.GET("/tables", s.Tables.List, perm("tables.view"))
	g.POST("/tables", s.Tables.Create, perm("tables.create"))
	g.GET("/tables/:id", s.Tables.Get, perm("tables.view"))
	g.DELETE("/tables/:id", s.Tables.Delete, perm("tables.delete"))
	g.POST("/tables/reconcile", s.Orders.ReconcileTables, perm("tables.edit"))
	g.PUT("/admin/regenerate-qr-codes", s.Tables.RegenerateQRCodes, perm("config.edit"))

	// ---- Sales ----
	g.GET("/sales", s.Sales.List, perm("sales.view"))
	g.DELETE("/sales/:id", s.Sales.Delete, perm("sales.delete"))

	// ---- Analytics ----
	g.GET("/analytics/daily", s.Analytics.Daily, perm("analytics.view"))
	g.GET("/analytics/weekly", s.Analytics.Weekly, perm("analytics.view"))

	g.GET("/config", s.Config.Get, perm("config.view"))
}

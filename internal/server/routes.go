package server

import (
	"net/http"

	"pos/internal/handler"
	appmw "pos/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlersはルーティングに使う全ハンドラ。
type Handlers struct {
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Sale       *handler.SaleHandler
	Return     *handler.ReturnHandler
	Adjustment *handler.AdjustmentHandler
	Count      *handler.CountHandler
	Settings   *handler.SettingsHandler
	Employee   *handler.EmployeeHandler
	Audit      *handler.AuditHandler
}

func registerRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/login", h.Auth.Login)

	//要認証
	api := e.Group("", authMW)

	api.GET("/products", h.Product.List)
	api.GET("/products/:id", h.Product.Detail)
	api.GET("/products/barcode/:barcode", h.Product.DetailByBarcode)
	api.POST("/products", h.Product.Create)
	api.PUT("/products/:id", h.Product.Update)
	api.DELETE("/products/:id", h.Product.Delete)
	api.GET("/reports/low-stock", h.Product.LowStockReport)

	api.POST("/sales", h.Sale.Create)
	api.GET("/sales", h.Sale.List)
	api.GET("/sales/:id", h.Sale.Detail)

	api.POST("/returns", h.Return.Process)
	api.GET("/returns", h.Return.List)
	api.GET("/returns/:id", h.Return.Detail)

	api.POST("/stock-adjustments", h.Adjustment.Create)
	api.GET("/stock-adjustments", h.Adjustment.List)

	api.GET("/inventory-counts", h.Count.List)
	api.GET("/inventory-counts/:id", h.Count.Detail)
	api.POST("/inventory-counts/:id/items", h.Count.AddItem)

	api.GET("/settings", h.Settings.Get)

	//店長のみ
	mgr := api.Group("", appmw.ManagerRoleGuard())

	mgr.PUT("/stock-adjustments/:id/approve", h.Adjustment.Approve)

	mgr.POST("/inventory-counts", h.Count.Start)
	mgr.PUT("/inventory-counts/:id/complete", h.Count.Complete)
	mgr.PUT("/inventory-counts/:id/cancel", h.Count.Cancel)

	mgr.PUT("/settings", h.Settings.Update)

	mgr.GET("/employees", h.Employee.List)
	mgr.GET("/employees/:id", h.Employee.Detail)
	mgr.POST("/employees", h.Employee.Create)
	mgr.PUT("/employees/:id", h.Employee.Update)
	mgr.PUT("/employees/:id/deactivate", h.Employee.Deactivate)

	mgr.GET("/audit-logs", h.Audit.List)
}

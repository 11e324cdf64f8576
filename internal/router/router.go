// Package router builds the Echo instance: global middleware, system routes
// and the versioned settlement API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/handler"
	"github.com/deppfellow/go-marketplace/internal/middleware"
	"github.com/deppfellow/go-marketplace/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// The request id feeds tracing and the context logger, which the request
	// logger reads. Throttled requests are still logged.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1", middlewares.Auth.RequireAuth)
	registerV1Routes(v1, h, middlewares.Auth.RequireRole(s.Config.Auth.AdminRole))

	return router
}

func registerV1Routes(v1 *echo.Group, h *handler.Handlers, requireAdmin echo.MiddlewareFunc) {
	w := h.Withdrawal
	withdrawals := v1.Group("/withdrawals")
	withdrawals.POST("/request", handler.Handle(w.Handler, w.Request, http.StatusCreated, &handler.RequestWithdrawalRequest{}))
	withdrawals.GET("/history", handler.Handle(w.Handler, w.History, http.StatusOK, &handler.WithdrawalHistoryRequest{}))
	withdrawals.GET("/balance", handler.Handle(w.Handler, w.Balance, http.StatusOK, &handler.EmptyRequest{}))
	withdrawals.GET("/:id", handler.Handle(w.Handler, w.Get, http.StatusOK, &handler.IDRequest{}))
	withdrawals.DELETE("/:id", handler.HandleNoContent(w.Handler, w.Cancel, http.StatusNoContent, &handler.IDRequest{}))

	e := h.Earning
	v1.GET("/earnings", handler.Handle(e.Handler, e.Mine, http.StatusOK, &handler.PageRequest{}))

	n := h.Notification
	notifications := v1.Group("/notifications")
	notifications.GET("", handler.Handle(n.Handler, n.List, http.StatusOK, &handler.ListNotificationsRequest{}))
	notifications.PATCH("/:id/read", handler.Handle(n.Handler, n.MarkRead, http.StatusOK, &handler.IDRequest{}))

	admin := v1.Group("/admin", requireAdmin)

	adminWithdrawals := admin.Group("/withdrawals")
	adminWithdrawals.GET("", handler.Handle(w.Handler, w.List, http.StatusOK, &handler.AdminListWithdrawalsRequest{}))
	adminWithdrawals.GET("/stats", handler.Handle(w.Handler, w.Stats, http.StatusOK, &handler.EmptyRequest{}))
	adminWithdrawals.PATCH("/:id/status", handler.Handle(w.Handler, w.UpdateStatus, http.StatusOK, &handler.TransitionStatusRequest{}))

	admin.GET("/vendors/:id/balance", handler.Handle(w.Handler, w.VendorBalance, http.StatusOK, &handler.IDRequest{}))

	adminEarnings := admin.Group("/earnings")
	adminEarnings.POST("", handler.Handle(e.Handler, e.Record, http.StatusCreated, &handler.RecordEarningRequest{}))
	adminEarnings.GET("", handler.Handle(e.Handler, e.List, http.StatusOK, &handler.PageRequest{}))
	adminEarnings.GET("/vendor/:id", handler.Handle(e.Handler, e.ByVendor, http.StatusOK, &handler.VendorEarningsRequest{}))
	adminEarnings.GET("/booking/:id", handler.Handle(e.Handler, e.ByBooking, http.StatusOK, &handler.IDRequest{}))
	adminEarnings.DELETE("/:id", handler.HandleNoContent(e.Handler, e.Delete, http.StatusNoContent, &handler.IDRequest{}))

	p := h.Payment
	admin.PATCH("/payments/:id/succeed", handler.Handle(p.Handler, p.Succeed, http.StatusOK, &handler.IDRequest{}))
}

package routes

import (
	"github.com/nickle23/DistriMundoEscolar/api/handler"
	"github.com/nickle23/DistriMundoEscolar/api/middleware"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Vendors        *handler.VendorHandler
	AuthMiddleware middleware.AuthMiddleware
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, vendorHandler *handler.VendorHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Vendors:        vendorHandler,
		AuthMiddleware: authMiddleware,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/login", r.Auth.Login)
	e.POST("/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireSession)
	e.GET("/auth/session", r.Auth.Session, r.AuthMiddleware.RequireSession)

	admin := e.Group("/admin", r.AuthMiddleware.RequireSession, middleware.RequireAdmin)
	admin.GET("/vendors", r.Vendors.List)
	admin.POST("/vendors", r.Vendors.Create)
	admin.GET("/vendors/:code", r.Vendors.Get)
	admin.PUT("/vendors/:code", r.Vendors.Update)
	admin.POST("/vendors/:code/rename", r.Vendors.Rename)
	admin.DELETE("/vendors/:code", r.Vendors.Delete)
	admin.POST("/vendors/:code/revoke-sessions", r.Vendors.RevokeSessions)
	admin.GET("/sessions", r.Vendors.ListSessions)
	admin.GET("/access-events", r.Vendors.ListAccessEvents)
}

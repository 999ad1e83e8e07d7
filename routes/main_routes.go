package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/noteshive_backend/controllers"
	"github.com/HSouheill/noteshive_backend/websocket"
)

// Router bundles what SetupRoutes needs
type Router struct {
	Auth  *controllers.AuthController
	Users *controllers.UserController
	Notes *controllers.NoteController
	Hub   *websocket.Hub
	// Protect guards the JSON API; SocketProtect guards the websocket upgrade
	Protect       []echo.MiddlewareFunc
	SocketProtect []echo.MiddlewareFunc
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, r Router) {
	RegisterAuthRoutes(e, r.Auth)
	RegisterUserRoutes(e, r.Protect, r.Users, r.Notes)
	RegisterSocketRoutes(e, r.SocketProtect, r.Hub)
}

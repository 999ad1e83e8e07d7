package routes

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/noteshive_backend/controllers"
	"github.com/HSouheill/noteshive_backend/middleware"
	"github.com/HSouheill/noteshive_backend/websocket"
)

// uploadBodyLimit sits above utils.MaxImageSize to leave room for the multipart envelope
const uploadBodyLimit = "6M"

// RegisterUserRoutes sets up all routes that need a signed-in account.
// Middleware is attached per route so unknown /api paths still 404.
func RegisterUserRoutes(e *echo.Echo, protect []echo.MiddlewareFunc, userController *controllers.UserController, noteController *controllers.NoteController) {
	r := e.Group("/api")
	upload := append(append([]echo.MiddlewareFunc{}, protect...), echoMiddleware.BodyLimit(uploadBodyLimit))

	// Profile
	r.GET("/users/profile", userController.GetProfile, protect...)
	r.POST("/users/profile-picture", userController.UploadProfilePicture, upload...)

	// Notes
	r.POST("/notes", noteController.CreateNote, protect...)
	r.GET("/notes", noteController.GetNotes, protect...)
	r.PUT("/notes/:id", noteController.UpdateNote, protect...)
	r.DELETE("/notes/:id", noteController.DeleteNote, protect...)

	// AI drafting
	r.POST("/ai/generate-content", userController.GenerateContent, protect...)
}

// RegisterSocketRoutes mounts the note event stream
func RegisterSocketRoutes(e *echo.Echo, protect []echo.MiddlewareFunc, hub *websocket.Hub) {
	e.GET("/api/ws", websocket.Handler(hub, middleware.CurrentUser), protect...)
}

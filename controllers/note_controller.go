package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/middleware"
	"github.com/HSouheill/noteshive_backend/models"
)

type NoteManager interface {
	Create(ctx context.Context, owner primitive.ObjectID, title, content string) (*models.Note, error)
	List(ctx context.Context, owner primitive.ObjectID) ([]models.Note, error)
	Update(ctx context.Context, owner primitive.ObjectID, noteID string, title, content *string) (*models.Note, error)
	Delete(ctx context.Context, owner primitive.ObjectID, noteID string) error
}

// NoteController serves the owner-scoped notes API
type NoteController struct {
	notes NoteManager
}

func NewNoteController(notes NoteManager) *NoteController {
	return &NoteController{notes: notes}
}

func (nc *NoteController) CreateNote(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var req models.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and content are required",
		})
	}

	note, err := nc.notes.Create(c.Request().Context(), user.ID, req.Title, req.Content)
	if err != nil {
		return respondError(c, err, "Failed to create note")
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Note created successfully",
		Data:    note,
	})
}

func (nc *NoteController) GetNotes(c echo.Context) error {
	user := middleware.CurrentUser(c)
	notes, err := nc.notes.List(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err, "Failed to fetch notes")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notes retrieved successfully",
		Data:    notes,
	})
}

func (nc *NoteController) UpdateNote(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var req models.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	note, err := nc.notes.Update(c.Request().Context(), user.ID, c.Param("id"), req.Title, req.Content)
	if err != nil {
		return respondError(c, err, "Failed to update note")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Note updated successfully",
		Data:    note,
	})
}

func (nc *NoteController) DeleteNote(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if err := nc.notes.Delete(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete note")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Note deleted successfully",
	})
}

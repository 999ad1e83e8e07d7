package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/repositories"
)

// Note event types pushed to the owner's websocket connections
const (
	EventNoteCreated = "note_created"
	EventNoteUpdated = "note_updated"
	EventNoteDeleted = "note_deleted"
)

type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Note, error)
	UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, title, content *string) (*models.Note, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error
}

// NotePublisher fans note events out to connected clients.
type NotePublisher interface {
	NotifyNote(userID primitive.ObjectID, event string, data interface{})
}

type NoteService struct {
	notes     NoteStore
	publisher NotePublisher
	logger    *logrus.Entry
}

func NewNoteService(notes NoteStore, publisher NotePublisher, logger *logrus.Logger) *NoteService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &NoteService{
		notes:     notes,
		publisher: publisher,
		logger:    logger.WithField("component", "notes"),
	}
}

func (s *NoteService) Create(ctx context.Context, owner primitive.ObjectID, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, newError(ErrValidation, "Title and content are required", nil)
	}
	note := &models.Note{Title: title, Content: content, UserID: owner}
	if err := s.notes.Create(ctx, note); err != nil {
		s.logger.WithError(err).WithField("userId", owner.Hex()).Error("failed to create note")
		return nil, newError(ErrDependency, "Failed to create note", err)
	}
	s.publisher.NotifyNote(owner, EventNoteCreated, note)
	return note, nil
}

func (s *NoteService) List(ctx context.Context, owner primitive.ObjectID) ([]models.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.WithError(err).WithField("userId", owner.Hex()).Error("failed to list notes")
		return nil, newError(ErrDependency, "Failed to fetch notes", err)
	}
	return notes, nil
}

// Update changes only the fields that are set.
func (s *NoteService) Update(ctx context.Context, owner primitive.ObjectID, noteID string, title, content *string) (*models.Note, error) {
	id, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return nil, newError(ErrNotFound, "Note not found", nil)
	}
	note, err := s.notes.UpdateOwned(ctx, id, owner, title, content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Note not found", nil)
		}
		s.logger.WithError(err).WithField("noteId", noteID).Error("failed to update note")
		return nil, newError(ErrDependency, "Failed to update note", err)
	}
	s.publisher.NotifyNote(owner, EventNoteUpdated, note)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, owner primitive.ObjectID, noteID string) error {
	id, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return newError(ErrNotFound, "Note not found", nil)
	}
	if err := s.notes.DeleteOwned(ctx, id, owner); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrNotFound, "Note not found", nil)
		}
		s.logger.WithError(err).WithField("noteId", noteID).Error("failed to delete note")
		return newError(ErrDependency, "Failed to delete note", err)
	}
	s.publisher.NotifyNote(owner, EventNoteDeleted, map[string]string{"id": noteID})
	return nil
}

type noopPublisher struct{}

func (noopPublisher) NotifyNote(primitive.ObjectID, string, interface{}) {}

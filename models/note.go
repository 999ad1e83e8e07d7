package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note belongs to exactly one user
type Note struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdateNoteRequest only changes the fields that are present
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type GenerateContentRequest struct {
	Content string `json:"content"`
}

type GenerateContentResponse struct {
	Message          string `json:"message"`
	GeneratedContent string `json:"generatedContent"`
}

type ProfilePictureResponse struct {
	Message        string `json:"message"`
	ProfilePicture string `json:"profilePicture"`
}

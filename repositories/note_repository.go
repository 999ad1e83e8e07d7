package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HSouheill/noteshive_backend/config"
	"github.com/HSouheill/noteshive_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoteRepository struct {
	collection *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{
		collection: db.Collection(config.NotesCollection),
	}
}

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	note.ID = primitive.NewObjectID()
	note.CreatedAt = now
	note.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, note); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's notes, newest first.
func (r *NoteRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []models.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

// UpdateOwned sets the given fields on a note owned by owner and returns the
// updated document.
func (r *NoteRepository) UpdateOwned(ctx context.Context, id, owner primitive.ObjectID, title, content *string) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if title != nil {
		set["title"] = *title
	}
	if content != nil {
		set["content"] = *content
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note models.Note
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "user": owner}, bson.M{"$set": set}, opts).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &note, nil
}

func (r *NoteRepository) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

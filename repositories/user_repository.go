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
)

const queryTimeout = 10 * time.Second

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(config.UsersCollection),
	}
}

// FindByEmail expects an already normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Create inserts a new account and assigns its ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Save replaces the stored account; last writer wins.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return r.replace(ctx, bson.M{"_id": user.ID}, user)
}

// SaveIfOTP replaces the account only while its stored OTP hash still equals
// expectedHash, so a code can be consumed by one writer only.
func (r *UserRepository) SaveIfOTP(ctx context.Context, user *models.User, expectedHash string) error {
	return r.replace(ctx, bson.M{"_id": user.ID, "otp.codeHash": expectedHash}, user)
}

func (r *UserRepository) replace(ctx context.Context, filter bson.M, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, filter, user)
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, hasOTP := filter["otp.codeHash"]; hasOTP {
			return ErrStaleWrite
		}
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, pictureURL string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"picture":   pictureURL,
			"updatedAt": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update profile picture: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

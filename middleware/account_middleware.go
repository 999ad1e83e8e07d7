package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/noteshive_backend/models"
	"github.com/HSouheill/noteshive_backend/repositories"
)

const accountKey = "account"

// AccountFinder loads accounts by ID.
type AccountFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireAccount resolves the token claims to a stored account. It must run
// after the JWT middleware.
func RequireAccount(users AccountFinder, logger *logrus.Logger) echo.MiddlewareFunc {
	log := logger.WithField("component", "auth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetUserFromToken(c)
			if claims == nil {
				return unauthorized(c, "Invalid token")
			}
			id, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return unauthorized(c, "Invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return unauthorized(c, "User not found")
				}
				log.WithError(err).WithField("userId", claims.UserID).Error("failed to load account")
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to load account",
				})
			}

			c.Set(accountKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the account resolved by RequireAccount.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(accountKey).(*models.User)
	return user
}

// SetCurrentUser stores an account on the context; used by handlers mounted
// behind RequireAccount and by tests.
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(accountKey, user)
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: message,
	})
}

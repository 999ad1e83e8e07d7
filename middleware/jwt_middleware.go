// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/noteshive_backend/models"
)

// SessionTTL is the validity of an issued session token.
const SessionTTL = 24 * time.Hour

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// TokenSigner issues and checks HS256 session tokens.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Entry
}

func NewTokenSigner(secret string, logger *logrus.Logger) *TokenSigner {
	return &TokenSigner{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
		logger: logger.WithField("component", "jwt"),
	}
}

// Sign creates a session token for the given account.
func (s *TokenSigner) Sign(userID, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := s.now()
	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a token string and returns its claims.
func (s *TokenSigner) Parse(tokenString string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// JWT returns the bearer gate. The token is only read from the
// Authorization header.
func (s *TokenSigner) JWT() echo.MiddlewareFunc {
	return s.gate(false)
}

// SocketJWT is the gate for websocket upgrades. It also accepts the token
// in the "token" query parameter.
func (s *TokenSigner) SocketJWT() echo.MiddlewareFunc {
	return s.gate(true)
}

func (s *TokenSigner) gate(allowQuery bool) echo.MiddlewareFunc {
	lookup := "header:" + echo.HeaderAuthorization
	if allowQuery {
		lookup += ",query:token"
	}
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:  s.secret,
		Claims:      &JwtCustomClaims{},
		TokenLookup: lookup,
		SuccessHandler: func(c echo.Context) {
			claims := GetUserFromToken(c)
			c.Set("userId", claims.UserID)
			c.Set("email", claims.Email)
		},
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			s.logger.WithError(err).WithField("path", c.Request().URL.Path).Debug("rejected token")
			message := "Invalid token"
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" && (!allowQuery || c.QueryParam("token") == "") {
				message = "Authorization token required"
			}
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: message,
			})
		},
	})
}

// GetUserFromToken extracts the claims stored by the JWT middleware
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

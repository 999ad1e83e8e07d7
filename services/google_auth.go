package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// GoogleCertsURL publishes the keys Google signs ID tokens with.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks a Google ID token and returns its identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// IDTokenVerifier validates tokens with Google's API client.
type IDTokenVerifier struct {
	validator *idtoken.Validator
	audience  string
}

func NewIDTokenVerifier(ctx context.Context, audience string) (*IDTokenVerifier, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return &IDTokenVerifier{validator: v, audience: audience}, nil
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := v.validator.Validate(ctx, idToken, v.audience)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(payload.Subject, payload.Claims), nil
}

// JWKSVerifier checks the token signature against Google's published keys
// and validates audience, issuer and expiry itself.
type JWKSVerifier struct {
	audience string
	fetch    func(ctx context.Context) (jwk.Set, error)
}

func NewJWKSVerifier(audience string) *JWKSVerifier {
	return &JWKSVerifier{
		audience: audience,
		fetch: func(ctx context.Context) (jwk.Set, error) {
			return jwk.Fetch(ctx, GoogleCertsURL)
		},
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	keys, err := v.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch google public keys: %w", err)
	}

	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		key, found := keys.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("public key not found for kid %q", kid)
		}
		var pubkey interface{}
		if err := key.Raw(&pubkey); err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		return pubkey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, errors.New("token audience mismatch")
	}
	issuerOK := false
	for _, iss := range googleIssuers {
		if claims.VerifyIssuer(iss, true) {
			issuerOK = true
			break
		}
	}
	if !issuerOK {
		return nil, errors.New("token issuer mismatch")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token subject missing")
	}
	return identityFromClaims(sub, claims), nil
}

// FirebaseVerifier accepts Firebase Authentication ID tokens issued for
// Google sign-in.
type FirebaseVerifier struct {
	app *firebase.App
}

func NewFirebaseVerifier(app *firebase.App) *FirebaseVerifier {
	return &FirebaseVerifier{app: app}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	client, err := v.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	token, err := client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(token.UID, token.Claims), nil
}

func identityFromClaims(subject string, claims map[string]interface{}) *GoogleIdentity {
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &GoogleIdentity{
		Subject: subject,
		Email:   email,
		Name:    name,
		Picture: picture,
	}
}

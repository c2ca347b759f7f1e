// Package auth issues and validates session tokens for profiles. The
// verification core never touches tokens; it only sees the actor profile ID
// that RequireAuth places in the request context.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	signingKey []byte
	issuer     string
}

// NewTokenService constructs a token service with an HMAC signing key.
func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), issuer: issuer}
}

// Generate issues a signed access token for the given profile.
func (s *TokenService) Generate(profileID id.ProfileID, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ProfileID: profileID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning the profile ID it grants.
func (s *TokenService) Validate(tokenString string) (id.ProfileID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.ProfileID{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.ProfileID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return id.ProfileID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	profileID, err := id.ParseProfileID(claims.ProfileID)
	if err != nil {
		return id.ProfileID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return profileID, nil
}

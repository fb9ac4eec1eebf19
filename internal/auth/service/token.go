package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. All of them are Unauthenticated errors.
var (
	ErrTokenMissing      = &models.Error{Kind: models.KindUnauthenticated, Message: "token is missing"}
	ErrTokenMalformed    = &models.Error{Kind: models.KindUnauthenticated, Message: "token is malformed"}
	ErrTokenExpired      = &models.Error{Kind: models.KindUnauthenticated, Message: "token has expired"}
	ErrTokenBadSignature = &models.Error{Kind: models.KindUnauthenticated, Message: "token signature is invalid"}
)

const accessTokenType = "access"

// TokenService handles session token issuing and verification.
// Tokens are stateless HS256 JWTs valid until their expiry.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue generates a signed token asserting the given identity.
// The expiry is fixed at issue time.
func (ts *TokenService) Issue(identity models.Identity) (string, error) {
	issuedAt := ts.now()
	claims := jwt.MapClaims{
		"user_id":  identity.ID,
		"role":     string(identity.Role),
		"username": identity.Username,
		"exp":      issuedAt.Add(ts.expiry).Unix(),
		"iat":      issuedAt.Unix(),
		"type":     accessTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates a token and returns the identity it asserts.
// A token verifies iff the signature matches and now is before its expiry.
func (ts *TokenService) Verify(tokenString string) (models.Identity, error) {
	if tokenString == "" {
		return models.Identity{}, ErrTokenMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now), jwt.WithExpirationRequired())
	if err != nil {
		return models.Identity{}, classifyParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrTokenMalformed
	}

	if tokenType, _ := claims["type"].(string); tokenType != accessTokenType {
		return models.Identity{}, fmt.Errorf("%w: not an access token", ErrTokenMalformed)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return models.Identity{}, fmt.Errorf("%w: user_id not found in token", ErrTokenMalformed)
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).IsValid() {
		return models.Identity{}, fmt.Errorf("%w: role not found in token", ErrTokenMalformed)
	}

	username, _ := claims["username"].(string)

	return models.Identity{
		ID:       userID,
		Role:     models.Role(role),
		Username: username,
	}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

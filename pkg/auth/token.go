package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when token is expired
	ErrExpiredToken = errors.New("token expired")
	// ErrRevokedToken is returned when token has been revoked
	ErrRevokedToken = errors.New("token revoked")
	// ErrMissingClaims is returned when required claims are missing
	ErrMissingClaims = errors.New("missing required claims")
)

// Claims represents session token claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService abstracts session token handling (issue/validate/revoke)
// so business logic never depends on a specific auth provider.
type TokenService interface {
	Issue(ctx context.Context, userID uuid.UUID, email string) (string, error)
	Validate(ctx context.Context, token string) (*Claims, error)
	Revoke(ctx context.Context, token string) error
}

// RevocationList stores revoked token IDs until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Compile-time check
var _ TokenService = (*JWTService)(nil)

// JWTService implements TokenService with HS256 JWT tokens
type JWTService struct {
	secretKey []byte
	issuer    string
	duration  time.Duration
	revoked   RevocationList
}

// NewJWTService creates a new JWT token service.
// revoked may be nil, in which case Revoke is a no-op and validation
// skips the revocation check.
func NewJWTService(secretKey string, issuer string, duration time.Duration, revoked RevocationList) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		duration:  duration,
		revoked:   revoked,
	}
}

// Issue generates a new session token for a user
func (s *JWTService) Issue(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate verifies a session token and returns its claims
func (s *JWTService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if s.revoked != nil {
		isRevoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if isRevoked {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

// Revoke invalidates a token for the remainder of its lifetime
func (s *JWTService) Revoke(ctx context.Context, tokenString string) error {
	if s.revoked == nil {
		return nil
	}

	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		// Already expired, nothing to remember
		return nil
	}

	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, ErrMissingClaims
	}

	return claims, nil
}

package application

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenType marks claims minted by Issue. Kept for wire compatibility
// with existing clients.
const accessTokenType = "access_token"

// TokenConfig carries the signing material and lifetime for issued tokens.
// It is threaded through the constructor and treated as immutable.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// DefaultTokenTTL applies when no lifetime is configured.
const DefaultTokenTTL = 30 * time.Minute

type tokenClaims struct {
	UserID       string `json:"user_id"`
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	TokenType    string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited bearer tokens. Tokens
// are self-contained; verification needs no shared state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService from the provided configuration.
func NewTokenService(cfg TokenConfig, now func() time.Time) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: append([]byte(nil), cfg.Secret...), ttl: ttl, now: now}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

// Issue signs a token carrying a snapshot of the identity. Role and
// department are copied into the claims; later changes to the account do not
// retroactively alter tokens already issued.
func (s *TokenService) Issue(identity Identity) (IssuedToken, error) {
	if s == nil || len(s.secret) == 0 {
		return IssuedToken{}, fmt.Errorf("token service not configured")
	}

	now := s.now().UTC()
	claims := tokenClaims{
		UserID:       identity.ID,
		EmployeeID:   identity.EmployeeID,
		Name:         identity.Name,
		Role:         identity.Role,
		DepartmentID: identity.DepartmentID,
		TokenType:    accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return IssuedToken{
		Token:     signed,
		TokenType: "bearer",
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

// Verify checks the signature and expiry of a token and returns its decoded
// claims. Bad signature, malformed structure, missing expiry, and expired
// tokens all produce the same ErrInvalidToken; the cause is never exposed to
// the caller.
func (s *TokenService) Verify(token string) (Claims, error) {
	if s == nil || len(s.secret) == 0 {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	decoded := Claims{
		UserID:       claims.UserID,
		EmployeeID:   claims.EmployeeID,
		Name:         claims.Name,
		Role:         claims.Role,
		DepartmentID: claims.DepartmentID,
		TokenType:    claims.TokenType,
		ExpiresAt:    claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	return decoded, nil
}

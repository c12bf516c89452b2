package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/accounts-service/internal/domain"
)

// TokenManager issues and verifies HS256-signed tokens for a single configured issuer.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes the JWT payload.
type Claims struct {
	TokenType domain.TokenType `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// Issuer returns the issuer this manager signs and accepts.
func (tm *TokenManager) Issuer() string {
	return tm.issuer
}

// Issue signs a token asserting subject and issuer, valid for ttl from now.
func (tm *TokenManager) Issue(subjectID, issuer string, ttl time.Duration) (string, error) {
	token, _, err := tm.sign(subjectID, issuer, "", ttl)
	return token, err
}

// GenerateToken signs a typed token for the configured issuer. The token carries a
// random id so it can be individually revoked.
func (tm *TokenManager) GenerateToken(subjectID string, typ domain.TokenType, ttl time.Duration) (string, time.Time, error) {
	token, claims, err := tm.sign(subjectID, tm.issuer, typ, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

func (tm *TokenManager) sign(subjectID, issuer string, typ domain.TokenType, ttl time.Duration) (string, *Claims, error) {
	now := tm.now().UTC()
	claims := &Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if typ != "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, claims, nil
}

// Verify checks structure, signature, expiry and issuer, in that order.
// The signature is verified before any claim, so an authentic expired token
// reports ErrTokenExpired. Expiry has no leeway: a token is expired once now >= exp.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)

	// Header and payload must decode before the signature segment is considered.
	unverified, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if unverified.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("%w: unexpected signing method %v", ErrTokenMalformed, unverified.Header["alg"])
	}

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing sub or iat", ErrTokenMalformed)
	}
	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrTokenIssuerMismatch
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
		// header and payload already decoded, so a malformed error here is the signature segment
		return ErrTokenBadSignature
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

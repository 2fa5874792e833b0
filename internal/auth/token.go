package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// ErrInvalidToken wraps every verification failure: bad signature, unknown
// key, malformed payload, or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claim is the caller identity carried by a verified token.
type Claim struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens against a Keyring.
type TokenIssuer struct {
	keys *Keyring
	ttl  time.Duration
	now  func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

func NewTokenIssuer(keys *Keyring, ttl time.Duration, opts ...IssuerOption) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	i := &TokenIssuer{
		keys: keys,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a token for claim's UserID and Username. IssuedAt and ExpiresAt
// are set by the issuer.
func (i *TokenIssuer) Issue(claim Claim) (string, error) {
	now := i.now()
	kid, secret := i.keys.Active()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:   claim.UserID,
		Username: claim.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(claim.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	token.Header["kid"] = kid

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claim.
func (i *TokenIssuer) Verify(tokenString string) (Claim, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)

	claims := &tokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, i.keyFunc)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claim{}, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return Claim{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	out := Claim{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (i *TokenIssuer) keyFunc(t *jwt.Token) (interface{}, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no key id")
	}
	secret, ok := i.keys.Lookup(kid)
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return secret, nil
}

package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims represents the session token claims
type Claims struct {
	UserID string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the subject data encoded into a session token
type Identity struct {
	UserID string
	Name   string
	Email  string
	Avatar string
	Role   string
}

// Issuer signs and verifies session tokens.
// Implementations can be swapped to rotate the signing algorithm.
type Issuer interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (*Claims, error)
	TTL() time.Duration
}

// HMACIssuer issues HS256 tokens with a shared secret
type HMACIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACIssuer creates a new HS256 token issuer
func NewHMACIssuer(secret, issuer string, ttl time.Duration) *HMACIssuer {
	return &HMACIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the token lifetime
func (i *HMACIssuer) TTL() time.Duration {
	return i.ttl
}

// Generate generates a new session token
func (i *HMACIssuer) Generate(identity Identity) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: identity.UserID,
		Name:   identity.Name,
		Email:  identity.Email,
		Avatar: identity.Avatar,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Subject:   identity.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate validates a session token and returns claims
func (i *HMACIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

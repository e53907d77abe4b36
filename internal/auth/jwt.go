package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type    string `json:"typ"`
	IsStaff bool   `json:"staff"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject claim
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenPair is what the token endpoint hands out
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer signs and validates HS256 tokens
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) sign(userID int64, isStaff bool, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Type:    typ,
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Issue creates an access/refresh pair for the user
func (i *Issuer) Issue(userID int64, isStaff bool) (*TokenPair, error) {
	access, err := i.sign(userID, isStaff, TokenTypeAccess, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(userID, isStaff, TokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// AccessTTL is the lifetime of access tokens, used for cookie expiry
func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// Parse validates the signature, expiry and expected token type
func (i *Issuer) Parse(tokenStr, wantType string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if c.Type != wantType {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, c.Type)
	}
	if _, err := c.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return c, nil
}

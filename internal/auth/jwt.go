package auth

// ACCESS TOKEN FLOW:
//  1. Client POSTs /login with username + password
//  2. Server verifies the password and issues a signed JWT
//  3. Client sends "Authorization: Bearer <jwt>" on gated routes
//  4. RequireAuth validates the JWT and binds the Identity to the request
//
// A token is HEADER.PAYLOAD.SIGNATURE where the signature is
// HMAC-SHA256(header+"."+payload, secret). Verification needs only the secret,
// never a database lookup.

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Issuer is written to and required in every token.
const Issuer = "inventory-api"

// DefaultTTL matches the 2400 second lifetime the API has always used.
const DefaultTTL = 40 * time.Minute

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Identity is the authenticated principal bound to a request.
type Identity struct {
	ID       int64
	Username string
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(d time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = d }
}

// WithClock replaces time.Now for both issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET_KEY=$(openssl rand -hex 32)
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl <= 0 {
		return nil, fmt.Errorf("auth: token lifetime must be positive, got %s", s.ttl)
	}
	return s, nil
}

// TTL returns the lifetime of tokens issued by s.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// claims is the JWT payload. "sub" carries the user id as a string, as
// RFC 7519 requires; "uid" repeats it as a number for clients.
type claims struct {
	Username string `json:"username"`
	UID      int64  `json:"uid"`
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given identity.
func (s *TokenService) Generate(id Identity) (string, error) {
	now := s.now()

	c := claims{
		Username: id.Username,
		UID:      id.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.NewWithTime(now).String(),
			Subject:   strconv.FormatInt(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the identity it was
// issued for.
//
// Rejected: bad signature, any algorithm other than HS256 (including "none"),
// a foreign issuer, a missing or past expiry, a subject that is not an id.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, fmt.Errorf("%w: bad subject %q", ErrTokenInvalid, c.Subject)
	}

	return Identity{ID: id, Username: c.Username}, nil
}

// Package auth holds the credential verifier, the access token service and the
// HTTP middleware that gates protected routes.
//
// Passwords are stored as bcrypt digests. A digest is self-describing:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost
//	 version
//
// so the salt and work factor never need a column of their own.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest plaintext bcrypt will look at. Longer input
// would be silently truncated, so Hash rejects it.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordService hashes and verifies passwords with bcrypt.
//
// It's a struct so the cost can be injected: production reads it from config,
// tests use the minimum (4) to keep hashing in the millisecond range.
type PasswordService struct {
	cost int

	// dummyHash is compared against when the caller has no stored digest,
	// so a lookup miss costs the same as a wrong password.
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the given cost.
// Costs outside bcrypt's accepted range are rejected.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("inventory-api-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: preparing dummy hash: %w", err)
	}
	return &PasswordService{cost: cost, dummyHash: dummy}, nil
}

// NewPasswordServiceForTest creates a PasswordService with a low cost for use
// in tests of other packages. It panics on an invalid cost.
//
// Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	ps, err := NewPasswordService(cost)
	if err != nil {
		panic(err)
	}
	return ps
}

// Hash returns the bcrypt digest of plaintext. Two calls with the same input
// return different digests because every call draws a fresh salt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches digest.
//
// A malformed digest, or an empty one, is simply a mismatch: the caller only
// ever needs a yes/no answer. bcrypt compares in constant time.
//
// bcrypt only reads the first 72 bytes, so a longer plaintext would match
// any digest of its prefix. Hash never accepts one, so it can never match.
func (p *PasswordService) Verify(plaintext, digest string) bool {
	if digest == "" || len(plaintext) > MaxPasswordBytes {
		p.VerifyNothing(plaintext)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyNothing burns one comparison against a throwaway digest. Call it when
// there is no user to check against so the response time matches a real
// failed comparison.
func (p *PasswordService) VerifyNothing(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
}

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

// fakeClock is a settable clock. Times are whole seconds because JWT
// numeric dates are.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// newTestTokenService creates a TokenService with a fixed secret and clock.
func newTestTokenService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_NonPositiveTTL(t *testing.T) {
	if _, err := NewTokenService(testSecret, WithTTL(0)); err == nil {
		t.Fatal("NewTokenService() should reject a zero lifetime")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error: %v", err)
	}
	if ts.TTL() != 2400*time.Second {
		t.Errorf("TTL() = %s, want 40m", ts.TTL())
	}
}

// =========================================================================
// GENERATE / VALIDATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t, newFakeClock())

	token, err := ts.Generate(Identity{ID: 1, Username: "alice"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Generate() token doesn't look like a JWT: %q", token)
	}
}

func TestGenerate_SameUserGetsDistinctTokens(t *testing.T) {
	ts := newTestTokenService(t, newFakeClock())

	token1, _ := ts.Generate(Identity{ID: 1, Username: "alice"})
	token2, _ := ts.Generate(Identity{ID: 1, Username: "alice"})

	// Same second, same claims except jti.
	if token1 == token2 {
		t.Error("Generate() returned identical tokens; jti should differ")
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t, newFakeClock())
	want := Identity{ID: 42, Username: "alice"}

	token, err := ts.Generate(want)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != want {
		t.Errorf("Validate() = %+v, want %+v", got, want)
	}
}

func TestValidate_Expiry(t *testing.T) {
	clock := newFakeClock()
	ts := newTestTokenService(t, clock)

	token, err := ts.Generate(Identity{ID: 7, Username: "bob"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	clock.Advance(time.Second)
	if _, err := ts.Validate(token); err != nil {
		t.Fatalf("Validate() at T+1s error = %v", err)
	}

	clock.Advance(ts.TTL())
	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() at T+ttl+1s error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t, newFakeClock())

	token, _ := ts.Generate(Identity{ID: 1, Username: "alice"})
	tampered := token[:len(token)-3] + "xxx"

	if _, err := ts.Validate(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate() error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	clock := newFakeClock()
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", WithClock(clock.Now))
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", WithClock(clock.Now))

	token, _ := ts1.Generate(Identity{ID: 1, Username: "alice"})

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_RejectsForeignTokens(t *testing.T) {
	clock := newFakeClock()
	ts := newTestTokenService(t, clock)
	now := clock.Now()

	sign := func(method jwt.SigningMethod, key any, c jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		return s
	}
	valid := func() claims {
		return claims{
			Username: "alice",
			UID:      1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    Issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	badSubject := valid()
	badSubject.Subject = "alice"

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not.a.jwt.token"},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())},
		{"HS512 instead of HS256", sign(jwt.SigningMethodHS512, []byte(testSecret), valid())},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"non-numeric subject", sign(jwt.SigningMethodHS256, []byte(testSecret), badSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Validate() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

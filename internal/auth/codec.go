package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by every CampusGate token.
type Claims struct {
	jwt.RegisteredClaims

	// Kind marks the token as access or refresh. Verification rejects a
	// token presented where the other kind is expected.
	Kind TokenKind `json:"kind"`

	// Fresh is true only on tokens minted directly from a password login.
	// Tokens minted through refresh are never fresh.
	Fresh bool `json:"fresh"`
}

// Codec mints and verifies HS256-signed session tokens. It is stateless
// and safe for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec returns a codec signing with the given shared secret.
// Secret length is enforced by config validation, not here.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Mint issues a signed token for the given subject. Every call generates a
// new random token identifier, so two mints for the same user never collide.
func (c *Codec) Mint(subjectID string, kind TokenKind, fresh bool, ttl time.Duration) (token string, tokenID string, err error) {
	if subjectID == "" {
		return "", "", fmt.Errorf("mint token: empty subject")
	}
	if !kind.Valid() {
		return "", "", fmt.Errorf("mint token: unknown kind %q", kind)
	}

	now := time.Now()
	tokenID = uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:  kind,
		Fresh: fresh,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, tokenID, nil
}

// Verify parses and validates a token string, enforcing signature, expiry,
// kind, and optionally freshness. Failures map onto the sentinel errors so
// the transport layer can pick the right status without string matching.
func (c *Codec) Verify(tokenString string, expect TokenKind, requireFresh bool) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		}
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", ErrTokenInvalid)
	}
	if claims.Kind != expect {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongKind, claims.Kind, expect)
	}
	if requireFresh && !claims.Fresh {
		return nil, ErrNotFresh
	}
	return claims, nil
}

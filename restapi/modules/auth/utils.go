// Package auth provides demo-mode authentication for the dashboard API.
//
//revive:disable-next-line:var-naming
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clonos/dashboard-backend/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the session token.
	CookieName = "auth_token"
	issuer     = "dashboard-backend"
	tokenTTL   = 24 * time.Hour
)

var (
	secretMu  sync.RWMutex
	jwtSecret = []byte("dashboard-builder-demo-secret")
)

// ============================================================================
// JWT TOKEN MANAGEMENT
// ============================================================================

// Claims represents JWT claims
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// User returns the identity carried by the token.
func (c *Claims) User() model.User {
	return model.User{Name: c.Name, Email: c.Email}
}

// GenerateJWT generates a JWT token for a user
func GenerateJWT(user model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret(), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ============================================================================
// CONFIGURATION
// ============================================================================

// SetJWTSecret sets the signing secret; call on startup with the configured value
func SetJWTSecret(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("JWT secret cannot be empty")
	}
	secretMu.Lock()
	jwtSecret = []byte(s)
	secretMu.Unlock()
	return nil
}

func secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return jwtSecret
}

// GetJWTExpirationTime returns the session lifetime
func GetJWTExpirationTime() time.Duration {
	return tokenTTL
}

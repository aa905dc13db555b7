package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims is the typed token a cart caller carries. Subject is the session id
// the cart's durable keys derive from.
type Claims struct {
	jwt.RegisteredClaims
}

// Mint issues a signed session token with a fresh uuid subject.
func Mint(cfg config.SessionConfig, now time.Time) (string, string, error) {
	if cfg.Secret == "" {
		return "", "", fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", "", fmt.Errorf("session issuer is required")
	}
	if cfg.ExpirationMinutes <= 0 {
		return "", "", fmt.Errorf("session expiration minutes must be positive")
	}

	sessionID := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, sessionID, nil
}

// Parse validates the token string and returns the session id.
func Parse(cfg config.SessionConfig, tokenString string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("session secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return "", err
	}

	sessionID := strings.TrimSpace(claims.Subject)
	if sessionID == "" {
		return "", fmt.Errorf("session token missing subject")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("session subject is not a uuid: %w", err)
	}
	return sessionID, nil
}

// internal/pkg/session/token.go
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/your-org/storefront-gateway/internal/config"
)

// Claims carries the browser session identity inside the signed cookie. An
// optional customer id is set when the upstream login flow attaches one.
type Claims struct {
	SessionID  string `json:"session_id"`
	CustomerID *uint  `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// Manager mints and validates the signed session cookie that keys carts and
// checkout state.
type Manager struct {
	config *config.Config
}

// NewManager creates a new session token manager
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Generate signs a session token for the given identity.
func (m *Manager) Generate(sessionID string, customerID *uint) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		SessionID:  sessionID,
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Session.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.config.App.Name,
			Subject:   fmt.Sprintf("session:%s", sessionID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.Session.Secret))
}

// Validate parses a session token and returns its claims.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Session.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("session token missing session id")
	}

	return claims, nil
}

// internal/pkg/session/token_test.go
package session

import (
	"strings"
	"testing"
	"time"

	"github.com/your-org/storefront-gateway/internal/config"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "storefront-gateway"
	cfg.Session.Secret = secret
	cfg.Session.TTL = time.Hour
	return cfg
}

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager(testConfig("0123456789abcdef0123456789abcdef"))

	sessionID := NewSessionID()
	token, err := m.Generate(sessionID, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.SessionID != sessionID {
		t.Errorf("session id = %q, want %q", claims.SessionID, sessionID)
	}
	if claims.CustomerID != nil {
		t.Errorf("customer id = %v, want nil for guest session", claims.CustomerID)
	}
}

func TestValidateCustomerSession(t *testing.T) {
	m := NewManager(testConfig("0123456789abcdef0123456789abcdef"))

	customerID := uint(42)
	token, err := m.Generate(NewSessionID(), &customerID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.CustomerID == nil || *claims.CustomerID != 42 {
		t.Errorf("customer id = %v, want 42", claims.CustomerID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager(testConfig("0123456789abcdef0123456789abcdef")).Generate(NewSessionID(), nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	other := NewManager(testConfig("ffffffffffffffffffffffffffffffff"))
	if _, err := other.Validate(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager(testConfig("0123456789abcdef0123456789abcdef"))
	for _, tok := range []string{"", "not-a-token", strings.Repeat("x", 300)} {
		if _, err := m.Validate(tok); err == nil {
			t.Errorf("Validate(%q) accepted a malformed token", tok)
		}
	}
}

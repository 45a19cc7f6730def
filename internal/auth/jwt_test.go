package auth

import (
	"testing"
	"time"
)

func TestGenerateToken_SessionLifetime(t *testing.T) {
	manager := NewJWTManager("test-secret-key", 50*time.Minute, 7*24*time.Hour)

	token, expiresAt, err := manager.GenerateToken("user-123", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}

	expected := time.Now().Add(50 * time.Minute)
	if expiresAt.Before(expected.Add(-time.Minute)) || expiresAt.After(expected.Add(time.Minute)) {
		t.Errorf("expiry time not within expected range, got %v", expiresAt)
	}
}

func TestGenerateToken_RememberLifetime(t *testing.T) {
	manager := NewJWTManager("test-secret-key", 50*time.Minute, 7*24*time.Hour)

	_, expiresAt, err := manager.GenerateToken("user-123", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := time.Now().Add(7 * 24 * time.Hour)
	if expiresAt.Before(expected.Add(-time.Minute)) || expiresAt.After(expected.Add(time.Minute)) {
		t.Errorf("expiry time not within expected range, got %v", expiresAt)
	}
}

func TestValidateToken_Valid(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour, 7*24*time.Hour)

	token, _, err := manager.GenerateToken("user-123", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error validating token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("expected UserID 'user-123', got '%s'", claims.UserID)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Hour, 7*24*time.Hour)

	token, _, err := manager.GenerateToken("user-123", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err = manager.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateToken_RememberOutlivesSession(t *testing.T) {
	// Session tokens already expired, remember tokens still valid.
	manager := NewJWTManager("test-secret-key", -time.Minute, time.Hour)

	short, _, err := manager.GenerateToken("user-123", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	long, _, err := manager.GenerateToken("user-123", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(short); err == nil {
		t.Error("expected session token to be expired")
	}
	if _, err := manager.ValidateToken(long); err != nil {
		t.Errorf("expected remember token to still validate, got: %v", err)
	}
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	manager1 := NewJWTManager("secret-key-1", time.Hour, 7*24*time.Hour)
	manager2 := NewJWTManager("secret-key-2", time.Hour, 7*24*time.Hour)

	token, _, err := manager1.GenerateToken("user-123", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err = manager2.ValidateToken(token); err == nil {
		t.Error("expected error for token with wrong signature")
	}
}

func TestValidateToken_Malformed(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour, 7*24*time.Hour)

	if _, err := manager.ValidateToken("not-a-valid-token"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := manager.ValidateToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}

package utils

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"promoshow/models"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(models.User{ID: "u1", Username: "ana", Role: models.RoleClient})
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	if strings.Count(token, ".") != 2 {
		t.Errorf("expected JWT with 2 dots, got %q", token)
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken(models.User{ID: "u2", Username: "admin", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}

	if claims.UserID != "u2" {
		t.Errorf("expected user_id u2, got %s", claims.UserID)
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("expected issuer %s, got %s", tokenIssuer, claims.Issuer)
	}
	if !claims.Identity().IsAdmin() {
		t.Error("expected admin identity from claims")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := os.Getenv("JWT_SECRET")

	claims := Claims{
		UserID: "u3",
		Role:   models.RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    tokenIssuer,
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(expiredToken); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestForeignIssuerRejected(t *testing.T) {
	secret := os.Getenv("JWT_SECRET")

	claims := Claims{
		UserID: "u4",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected error for foreign issuer")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, _ := GenerateToken(models.User{ID: "u5", Role: models.RoleClient})
	if _, err := ValidateToken(token + "x"); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
)

func testKeys(t *testing.T) *Keys {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return NewKeysFromPair(privateKey)
}

func TestTokenRoundTrip(t *testing.T) {
	keys := testKeys(t)

	token, err := keys.GenerateToken("u1", "asha@example.com", RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := keys.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "asha@example.com" || claims.Role != RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_RejectsTampered(t *testing.T) {
	keys := testKeys(t)

	token, err := keys.GenerateToken("u1", "asha@example.com", RoleShopkeeper)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]
	if _, err := keys.ValidateToken(tampered); err == nil {
		t.Fatalf("expected tampered token to fail validation")
	}
}

func TestValidateToken_RejectsOtherKey(t *testing.T) {
	minter := testKeys(t)
	verifier := testKeys(t)

	token, err := minter.GenerateToken("u1", "asha@example.com", RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatalf("expected token signed by another key to fail validation")
	}
}

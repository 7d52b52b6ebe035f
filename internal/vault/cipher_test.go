package vault_test

import (
	"context"
	"strings"
	"testing"

	"eval-flow/internal/testutil"
	"eval-flow/internal/vault"
)

func TestCommentCipherRoundTrip(t *testing.T) {
	tc := testutil.SetupTestContainers(t).WithVault(t)
	defer tc.Cleanup(t)

	ctx := context.Background()
	client, err := vault.NewClient(ctx, &vault.Config{
		Address:      tc.VaultAddr,
		Token:        tc.VaultToken,
		TransitMount: "transit",
	})
	if err != nil {
		t.Fatalf("Failed to create vault client: %v", err)
	}
	if err := client.Health(ctx); err != nil {
		t.Fatalf("Vault not healthy: %v", err)
	}

	cipher, err := vault.NewCommentCipher(ctx, client, "revision-comments")
	if err != nil {
		t.Fatalf("Failed to create comment cipher: %v", err)
	}

	aad := map[string]string{"period_id": "p-1", "employee_id": "e-1", "step": "self"}
	ciphertext, err := cipher.Encrypt(ctx, "Please add measurable results", aad)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !strings.HasPrefix(ciphertext, "vault:v1:") {
		t.Errorf("Expected transit ciphertext, got %q", ciphertext)
	}

	plaintext, err := cipher.Decrypt(ctx, ciphertext, aad)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plaintext != "Please add measurable results" {
		t.Errorf("Unexpected plaintext %q", plaintext)
	}

	other := map[string]string{"period_id": "p-1", "employee_id": "e-2", "step": "self"}
	if _, err := cipher.Decrypt(ctx, ciphertext, other); err == nil {
		t.Error("Expected decryption with a different context to fail")
	}
}

func TestPlainCipherPassesThrough(t *testing.T) {
	var c vault.PlainCipher
	got, err := c.Encrypt(context.Background(), "text", nil)
	if err != nil || got != "text" {
		t.Errorf("Encrypt = %q, %v", got, err)
	}
	got, err = c.Decrypt(context.Background(), "text", nil)
	if err != nil || got != "text" {
		t.Errorf("Decrypt = %q, %v", got, err)
	}
}

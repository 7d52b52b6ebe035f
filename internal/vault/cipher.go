package vault

import (
	"context"
	"fmt"
	"log/slog"
)

// CommentCipher encrypts revision comments with a transit key
type CommentCipher struct {
	client  *Client
	keyName string
}

// NewCommentCipher ensures keyName exists and returns a cipher using it
func NewCommentCipher(ctx context.Context, client *Client, keyName string) (*CommentCipher, error) {
	if err := client.CreateKey(ctx, keyName); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Vault comment key ready", "key", keyName)
	return &CommentCipher{client: client, keyName: keyName}, nil
}

func (c *CommentCipher) Encrypt(ctx context.Context, plaintext string, aad map[string]string) (string, error) {
	return c.client.Encrypt(ctx, c.keyName, []byte(plaintext), aad)
}

func (c *CommentCipher) Decrypt(ctx context.Context, ciphertext string, aad map[string]string) (string, error) {
	plaintext, err := c.client.Decrypt(ctx, c.keyName, ciphertext, aad)
	if err != nil {
		return "", fmt.Errorf("comment %s: %w", c.keyName, err)
	}
	return string(plaintext), nil
}

// PlainCipher stores comments as they are, used when Vault is disabled
type PlainCipher struct{}

func (PlainCipher) Encrypt(ctx context.Context, plaintext string, aad map[string]string) (string, error) {
	return plaintext, nil
}

func (PlainCipher) Decrypt(ctx context.Context, ciphertext string, aad map[string]string) (string, error) {
	return ciphertext, nil
}

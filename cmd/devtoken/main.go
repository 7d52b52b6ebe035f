// Command devtoken generates the ES256 signing key and mints access tokens
// for local development against the API.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"eval-flow/internal/auth"
	"eval-flow/internal/config"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	keygen := flag.Bool("keygen", false, "generate a new ECDSA P-256 signing key and exit")
	keyFile := flag.String("key-file", "jwt-private-key.pem", "where -keygen writes the private key")
	userID := flag.String("user", "", "employee UUID carried in the token")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "name claim")
	roles := flag.String("roles", auth.RoleEmployee, "comma separated roles")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *keygen {
		if err := generateKey(*keyFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := uuid.Validate(*userID); err != nil {
		fmt.Fprintf(os.Stderr, "-user must be a UUID: %v\n", err)
		os.Exit(2)
	}

	_ = godotenv.Load(".env")
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set, run with -keygen first")
		os.Exit(1)
	}

	svc := auth.NewService(&config.JWTConfig{
		Secret:     strings.ReplaceAll(secret, `\n`, "\n"),
		Issuer:     os.Getenv("JWT_ISSUER"),
		Expiration: *ttl,
	})
	token, err := svc.GenerateToken(auth.Identity{
		UserID: *userID,
		Email:  *email,
		Name:   *name,
		Roles:  strings.Split(*roles, ","),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func generateKey(path string) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	privateKeyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	if err := os.WriteFile(path, privateKeyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key file: %w", err)
	}

	// Single line with escaped newlines for .env
	fmt.Printf("JWT_SECRET=%s\n", strings.ReplaceAll(string(privateKeyPEM), "\n", `\n`))
	fmt.Fprintf(os.Stderr, "Private key saved to: %s\n", path)
	return nil
}

package configs

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gorilla/securecookie"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" {
		return nil, fmt.Errorf("APP_AUTH_KEY environment variable not set")
	}
	if env.AppEncKey == "" {
		return nil, fmt.Errorf("APP_ENC_KEY environment variable not set")
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
	}

	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding. Must be 16, 24, or 32 bytes for AES encryption", len(encKey))
	}

	log.Println("✅ Session keys loaded and decoded successfully.")
	return &SessionKeys{
		AuthKey: authKey,
		EncKey:  encKey,
	}, nil
}

// GenerateSessionKeys returns a fresh base64 auth key (64 bytes) and enc key (32 bytes).
func GenerateSessionKeys() (string, string, error) {
	authKey := securecookie.GenerateRandomKey(64)
	if authKey == nil {
		return "", "", fmt.Errorf("could not generate authentication key")
	}
	encKey := securecookie.GenerateRandomKey(32)
	if encKey == nil {
		return "", "", fmt.Errorf("could not generate encryption key")
	}
	return base64.URLEncoding.EncodeToString(authKey), base64.URLEncoding.EncodeToString(encKey), nil
}

// WriteSessionKeys prints a new key pair to out and saves it to path as .env lines.
func WriteSessionKeys(out io.Writer, path string) error {
	authKey, encKey, err := GenerateSessionKeys()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\n", authKey, encKey)

	if path == "" {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\n", authKey, encKey); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", path, err)
	}
	fmt.Fprintf(out, "\nKeys have been written to '%s'. Regenerating them invalidates existing guest sessions.\n", path)
	return nil
}

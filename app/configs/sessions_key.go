package configs

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog/log"
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

	log.Info().Msg("Session keys loaded and decoded successfully")
	return &SessionKeys{
		AuthKey: authKey,
		EncKey:  encKey,
	}, nil
}

// DevSessionKeys returns throwaway keys so a development server can start
// without a configured .env. Sessions do not survive a restart.
func DevSessionKeys() *SessionKeys {
	return &SessionKeys{
		AuthKey: securecookie.GenerateRandomKey(64),
		EncKey:  securecookie.GenerateRandomKey(32),
	}
}

func GenerateAndPrintSessionKeys() error {
	fmt.Println("Generating new session keys...")

	keys := map[string][]byte{
		"APP_AUTH_KEY": securecookie.GenerateRandomKey(64),
		"APP_ENC_KEY":  securecookie.GenerateRandomKey(32),
		"CSRF_KEY":     securecookie.GenerateRandomKey(32),
		"JWT_SECRET":   securecookie.GenerateRandomKey(32),
	}
	order := []string{"APP_AUTH_KEY", "APP_ENC_KEY", "CSRF_KEY", "JWT_SECRET"}

	envFilePath := ".env.new_keys"
	fullPath, err := filepath.Abs(envFilePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", envFilePath, err)
	}

	file, err := os.Create(envFilePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", envFilePath, err)
	}
	defer file.Close()

	fmt.Println("\n================================================")
	fmt.Println("Generated keys:")
	for _, name := range order {
		key := keys[name]
		if key == nil {
			return fmt.Errorf("error: could not generate %s", name)
		}
		line := fmt.Sprintf("%s=%s\n", name, base64.URLEncoding.EncodeToString(key))
		fmt.Print(line)
		if _, err := file.WriteString(line); err != nil {
			return fmt.Errorf("failed to write keys to file %s: %w", envFilePath, err)
		}
	}
	fmt.Println("================================================")

	fmt.Printf("\nKeys have been written to '%s'.\n", fullPath)
	fmt.Println("Please copy these lines from that file into your actual .env file.")
	fmt.Println("If you regenerate, existing user sessions and admin tokens will be invalidated.")

	return nil
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// envPaths are tried in order; the first one found wins.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
}

// LoadEnv loads environment variables from the first .env file found and
// returns its path, or "" when there is none. Variables already set in the
// process environment are never overridden.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// InitializeConfig loads .env and reads Settings from the environment.
func InitializeConfig() (*Settings, string, error) {
	loaded, err := LoadEnv()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load environment: %w", err)
	}

	settings, err := FromEnv()
	if err != nil {
		return nil, loaded, err
	}
	return settings, loaded, nil
}

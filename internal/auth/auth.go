// Package auth resolves the Gemini API key for the server.
package auth

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv loads a local .env file if one exists. Missing files are fine;
// production deployments set real environment variables.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
		return
	}
	log.Debug().Msg("Loaded environment from .env")
}

// GetAPIKey retrieves the Gemini API key from the GEMINI_API_KEY environment
// variable.
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}
	return "", fmt.Errorf("API key not found: set GEMINI_API_KEY (directly or via .env)")
}

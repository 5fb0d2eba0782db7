package shared

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvWorkflowURL    = "EASYHR_WORKFLOW_URL"
	EnvWorkflowAPIKey = "EASYHR_WORKFLOW_API_KEY"
	EnvAPIKey         = "EASYHR_API_KEY"
	EnvDatabasePath   = "EASYHR_DB_PATH"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; existing environment variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv overlays secrets and deployment-specific values from the environment onto c.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvWorkflowURL); v != "" {
		c.Workflow.BaseURL = v
	}
	if v := os.Getenv(EnvWorkflowAPIKey); v != "" {
		c.Workflow.APIKey = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
}

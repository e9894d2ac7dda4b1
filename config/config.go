package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL     string
	Port      string
	ReportDir string
	TZName    string
}

// Load reads configuration from environment variables, falling back to a
// local .env file when present
func Load() (*Config, error) {
	// A missing .env file is fine; real env vars take precedence anyway.
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	reportDir := os.Getenv("REPORT_DIR")
	if reportDir == "" {
		reportDir = "./company_jsons"
	}

	tzName := os.Getenv("TZ_NAME")
	if tzName == "" {
		tzName = "America/New_York"
	}

	return &Config{
		PGURL:     pgURL,
		Port:      port,
		ReportDir: reportDir,
		TZName:    tzName,
	}, nil
}

// Location resolves TZName to a *time.Location. Report timestamps carry no
// zone of their own, so this is the zone they are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", c.TZName, err)
	}
	return loc, nil
}

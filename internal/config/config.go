// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the dev server's listening address (ip:port).
	Addr string

	// BaseURL is the backend base URL the client talks to.
	BaseURL string

	// StorePath is the file the client persists its credentials to.
	StorePath string

	// DatabaseDSN holds the database connection string for the dev server.
	// When empty, the dev server keeps everything in memory.
	DatabaseDSN string

	// JWTSecret signs the dev server's access tokens.
	JWTSecret string

	// LogLevel sets the zap log level.
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "url", "http://localhost:8080", "backend base URL")
	flag.StringVar(&options.StorePath, "store", "tourhub.json", "path to the client credential store")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "secret", "dev-secret", "signing secret for access tokens")
	flag.StringVar(&options.LogLevel, "level", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, .env file and environment variables
// to set configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// A missing .env file is fine; it only seeds the environment.
	_ = godotenv.Load()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if baseURL := os.Getenv("TOURHUB_BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}
	if storePath := os.Getenv("TOURHUB_STORE"); storePath != "" {
		options.StorePath = storePath
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}

	return options
}

package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings for the analysis pipeline.
type Config struct {
	// DataDir holds the persisted record collection.
	DataDir string `envconfig:"DATA_DIR" default:"user_data"`
	// UploadsDir holds one stable audio file per resolved project slot.
	UploadsDir  string `envconfig:"UPLOADS_DIR" default:"uploads"`
	RecordsFile string `envconfig:"RECORDS_FILE" default:"all_feedbacks.json"`

	// FingerprintLen is the hex width of the content fingerprint.
	FingerprintLen int `envconfig:"FINGERPRINT_LEN" default:"10"`
	// MaxFilenameLen bounds the sanitized user prefix of stored filenames.
	MaxFilenameLen int `envconfig:"MAX_FILENAME_LEN" default:"64"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"console"` // "console" or "json"
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:        "user_data",
		UploadsDir:     "uploads",
		RecordsFile:    "all_feedbacks.json",
		FingerprintLen: 10,
		MaxFilenameLen: 64,
		LogFormat:      "console",
		LogLevel:       "info",
	}
}

// FromEnv loads configuration from environment variables with the
// given prefix (e.g. MIXMENTOR_DATA_DIR).
func FromEnv(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RecordsPath returns the full path of the record collection file.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.DataDir, c.RecordsFile)
}

// EnsureDirs creates the data and uploads directories if missing.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.UploadsDir, 0o755)
}

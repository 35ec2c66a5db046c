package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// SyncConfig holds the remote snapshot store settings. The key authorizes
// read and write on a single shared bin; no per-user accounts exist.
type SyncConfig struct {
	Endpoint  string `yaml:"endpoint"`
	BinID     string `yaml:"bin_id"`
	MasterKey string `yaml:"master_key"`
}

// Validate checks that the remote store is fully addressed.
func (c SyncConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, is.URL),
		validation.Field(&c.BinID, validation.Required),
		validation.Field(&c.MasterKey, validation.Required),
	)
}

// DefaultSyncConfig points at jsonbin.io; bin and key come from the
// config file or environment.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Endpoint:  "https://api.jsonbin.io/v3/b",
		BinID:     os.Getenv("ASCETIC_BIN_ID"),
		MasterKey: os.Getenv("ASCETIC_MASTER_KEY"),
	}
}

// LoadSyncConfig reads a YAML sync config with environment variable
// expansion, falling back to defaults when the file is absent.
func LoadSyncConfig(filename string) (SyncConfig, error) {
	cfg := DefaultSyncConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read sync config %s: %w", filename, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse sync config %s: %w", filename, err)
	}
	return cfg, nil
}

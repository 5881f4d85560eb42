package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DataDir       string `mapstructure:"DATA_DIR"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DefaultCard   string `mapstructure:"DEFAULT_CARD"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

var configKeys = map[string]any{
	"SERVER_PORT":    "8080",
	"STORAGE_DRIVER": DriverFile,
	"DATA_DIR":       "./data",
	"SQLITE_PATH":    "scores.db",
	"DEFAULT_CARD":   "save.dat",
	"LOG_LEVEL":      "info",
}

// Setup reads cfgPath (a .env style file) on top of the defaults.
// Environment variables win over both. A missing file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, def := range configKeys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.DefaultCard == "" {
		return errors.New("DEFAULT_CARD must not be empty")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "STOCKFLOW"
	configName     = "stockflow"
	defaultBaseURL = "https://api.stockflow.app/api/v1"
	defaultAppName = "StockFlow"
	defaultTimeout = 30 * time.Second
)

var _ Config = (*viperConfig)(nil)

type viperConfig struct {
	v *viper.Viper
}

// New loads settings from STOCKFLOW_* environment variables and, when
// present, a stockflow.yaml in the working directory or ~/.config/stockflow.
// Environment variables win over the file.
func New() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_name", defaultAppName)
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("data_folder", defaultDataFolder())
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("verbose", false)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "stockflow"))
	}
	_ = v.ReadInConfig() // missing file is fine, env and defaults apply

	return &viperConfig{v: v}
}

func (c *viperConfig) AppName() string {
	return c.v.GetString("app_name")
}

func (c *viperConfig) BaseURL() string {
	return c.v.GetString("base_url")
}

func (c *viperConfig) DataFolder() string {
	return c.v.GetString("data_folder")
}

func (c *viperConfig) Timeout() time.Duration {
	return c.v.GetDuration("timeout")
}

func (c *viperConfig) Verbose() bool {
	return c.v.GetBool("verbose")
}

func defaultDataFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockflow"
	}
	return filepath.Join(home, ".stockflow")
}

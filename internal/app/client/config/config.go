package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"

	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = EnvLocal
	defaultConfigDir     = ".geotrail"

	// The retry and name-collision caps are deliberately configurable:
	// they only exist to bound loops, the exact thresholds carry no
	// invariant.
	defaultResetRetries = 5
	defaultResetDelayMS = 500
	defaultNameAttempts = 100
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	TokenPath     string `mapstructure:"token_path"`
	DataPath      string `mapstructure:"data_path"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	ResetRetries  int    `mapstructure:"reset_retries"`
	ResetDelayMS  int    `mapstructure:"reset_delay_ms"`
	NameAttempts  int    `mapstructure:"name_attempts"`
}

// MustLoad reads the client configuration from the environment and an
// optional .env file, with defaults for everything.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("loading .env: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("RESET_RETRIES", defaultResetRetries)
	viper.SetDefault("RESET_DELAY_MS", defaultResetDelayMS)
	viper.SetDefault("NAME_ATTEMPTS", defaultNameAttempts)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("creating config dir: %v\n", err)
	}

	config := &Config{
		Env:           viper.GetString("APP_ENV"),
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ConfigDir:     configDir,
		TokenPath:     filepath.Join(configDir, "token"),
		DataPath:      filepath.Join(configDir, "trail.db"),
		EnableTLS:     viper.GetBool("ENABLE_TLS"),
		ResetRetries:  viper.GetInt("RESET_RETRIES"),
		ResetDelayMS:  viper.GetInt("RESET_DELAY_MS"),
		NameAttempts:  viper.GetInt("NAME_ATTEMPTS"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("config error: %v", err))
	}
	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.NameAttempts < 1 {
		return fmt.Errorf("name_attempts must be positive")
	}
	return nil
}

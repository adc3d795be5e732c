package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	httpapi "github.com/shoplytics/ecom-insights/internal/api/http"
	"github.com/shoplytics/ecom-insights/internal/insights"
	"github.com/shoplytics/ecom-insights/internal/loader"
	"github.com/shoplytics/ecom-insights/internal/store"
	"github.com/shoplytics/ecom-insights/log"
)

// DatasetConfig selects where raw sales data is read from.
type DatasetConfig struct {
	// Source is either "csv" or "mysql".
	Source string        `mapstructure:"source"`
	CSV    loader.Config `mapstructure:"csv"`
}

// Config represents the global configuration for the service.
type Config struct {
	Dataset  DatasetConfig   `mapstructure:"dataset"`
	DB       store.Config    `mapstructure:"mysql"`
	Logger   log.Config      `mapstructure:"logger"`
	HTTP     httpapi.Config  `mapstructure:"http"`
	Insights insights.Config `mapstructure:"insights"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/ecom-insights")
		viper.AddConfigPath("/etc/ecom-insights")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}

	if config.Dataset.Source == "" {
		config.Dataset.Source = "csv"
	}

	return &config, nil
}

// bindEnvVars binds flat environment variable names to nested config keys.
func bindEnvVars() {
	viper.BindEnv("dataset.source", "DATASET_SOURCE")
	viper.BindEnv("dataset.csv.dir", "DATASET_CSV_DIR")

	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")

	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.address", "HTTP_ADDRESS")
	viper.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")

	viper.BindEnv("insights.default_status", "INSIGHTS_DEFAULT_STATUS")
}
